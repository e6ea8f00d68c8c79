package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
	"github.com/joonwoo/stockfolio/backend/pkg/config"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func quoteAt(symbol string, price float64, at time.Time) *stock.Quote {
	return &stock.Quote{Symbol: symbol, CurrentPrice: price, UpdatedAt: at}
}

func TestQuoteCacheRejectsOlderUpdate(t *testing.T) {
	cache := NewQuoteCache(time.Minute, testLogger())
	now := time.Now()

	if !cache.Update(quoteAt("005930", 72500, now)) {
		t.Fatal("First update rejected")
	}
	if cache.Update(quoteAt("005930", 72000, now.Add(-time.Second))) {
		t.Error("Older update accepted")
	}

	q, ok := cache.Get("005930")
	if !ok || q.CurrentPrice != 72500 {
		t.Errorf("Cached quote = %+v, want fresh 72500", q)
	}
}

func TestQuoteCacheAcceptsEqualTimestamp(t *testing.T) {
	cache := NewQuoteCache(time.Minute, testLogger())
	now := time.Now()

	cache.Update(quoteAt("005930", 72500, now))
	if !cache.Update(quoteAt("005930", 72600, now)) {
		t.Error("Same-timestamp update rejected")
	}
}

func TestQuoteCacheFreshness(t *testing.T) {
	cache := NewQuoteCache(time.Minute, testLogger())
	now := time.Now()

	cache.Update(quoteAt("005930", 72500, now.Add(-2*time.Minute)))
	if cache.Fresh("005930", now) {
		t.Error("Expired entry reported fresh")
	}

	cache.Update(quoteAt("AAPL", 185.5, now.Add(-10*time.Second)))
	if !cache.Fresh("AAPL", now) {
		t.Error("Recent entry reported stale")
	}
	if cache.Fresh("MSFT", now) {
		t.Error("Missing entry reported fresh")
	}
}

func TestQuoteCacheSnapshot(t *testing.T) {
	cache := NewQuoteCache(time.Minute, testLogger())
	now := time.Now()

	cache.Update(quoteAt("005930", 72500, now))
	cache.Update(quoteAt("AAPL", 185.5, now))

	quotes := cache.Snapshot([]string{"AAPL", "MSFT", "005930"})
	if len(quotes) != 2 {
		t.Errorf("Snapshot = %d quotes, want 2 (missing symbol skipped)", len(quotes))
	}
}

func TestPollerSubscribeRefCounting(t *testing.T) {
	var resolves atomic.Int64
	resolve := func(ctx context.Context, symbol string) (*stock.Quote, error) {
		resolves.Add(1)
		return quoteAt(symbol, 100, time.Now()), nil
	}

	cache := NewQuoteCache(time.Minute, testLogger())
	p := NewPoller(resolve, cache, nil, testLogger())

	ctx := context.Background()
	p.Subscribe(ctx, "005930")
	p.Subscribe(ctx, "005930") // 두 번째 구독자
	p.Subscribe(ctx, "AAPL")

	// 첫 구독 시 즉시 1회 갱신
	deadline := time.After(2 * time.Second)
	for resolves.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("Initial refresh count = %d, want 2", resolves.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}

	p.Unsubscribe("005930")
	if got := p.subscribed(); len(got) != 2 {
		t.Errorf("subscribed() = %v, want both symbols while one subscriber remains", got)
	}

	p.Unsubscribe("005930")
	if got := p.subscribed(); len(got) != 1 || got[0] != "AAPL" {
		t.Errorf("subscribed() = %v, want [AAPL]", got)
	}
}

func TestPollerRefreshFailureKeepsCache(t *testing.T) {
	resolve := func(ctx context.Context, symbol string) (*stock.Quote, error) {
		return nil, stock.ErrQuoteUnavailable
	}

	cache := NewQuoteCache(time.Minute, testLogger())
	cache.Update(quoteAt("005930", 72500, time.Now()))

	p := NewPoller(resolve, cache, nil, testLogger())
	p.refreshOne(context.Background(), "005930")

	q, ok := cache.Get("005930")
	if !ok || q.CurrentPrice != 72500 {
		t.Errorf("Cache lost entry after failed refresh: %+v", q)
	}
}

func TestHubDispatchFiltersBySubscription(t *testing.T) {
	hub := NewHub(testLogger())
	go hub.Run()
	defer hub.Stop()

	samsung := &Client{hub: hub, send: make(chan *stock.Quote, 4), symbols: map[string]bool{"005930": true}}
	apple := &Client{hub: hub, send: make(chan *stock.Quote, 4), symbols: map[string]bool{"AAPL": true}}

	hub.register <- samsung
	hub.register <- apple

	hub.Broadcast(quoteAt("005930", 72500, time.Now()))

	select {
	case q := <-samsung.send:
		if q.Symbol != "005930" {
			t.Errorf("Delivered %s, want 005930", q.Symbol)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Subscribed client received nothing")
	}

	select {
	case q := <-apple.send:
		t.Errorf("Unsubscribed client received %s", q.Symbol)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub(testLogger())
	go hub.Run()
	defer hub.Stop()

	client := &Client{hub: hub, send: make(chan *stock.Quote, 1), symbols: map[string]bool{}}
	hub.register <- client
	hub.unregister <- client

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("Expected closed send channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Send channel not closed")
	}
}

func TestServeWSInitialSubscriptionOutlivesHandler(t *testing.T) {
	cache := NewQuoteCache(time.Minute, testLogger())
	hub := NewHub(testLogger())
	go hub.Run()
	defer hub.Stop()

	var refreshCtx atomic.Value
	poller := NewPoller(func(ctx context.Context, symbol string) (*stock.Quote, error) {
		refreshCtx.Store(ctx)
		return quoteAt(symbol, 185.5, time.Now()), nil
	}, cache, hub, testLogger())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, poller, testLogger(), w, r)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/?symbols=AAPL"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for refreshCtx.Load() == nil {
		if time.Now().After(deadline) {
			t.Fatal("Initial refresh never ran")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// 핸들러가 복귀한 뒤에도 첫 갱신의 컨텍스트는 살아 있어야 한다
	time.Sleep(50 * time.Millisecond)
	ctx := refreshCtx.Load().(context.Context)
	if err := ctx.Err(); err != nil {
		t.Errorf("Initial refresh context canceled: %v", err)
	}

	if _, ok := cache.Get("AAPL"); !ok {
		t.Error("Initial refresh did not populate the cache")
	}
}
