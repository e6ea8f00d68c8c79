package realtime

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

const (
	// pollInterval matches the UI refresh cadence.
	pollInterval = 30 * time.Second

	// upstreamRateLimit bounds resolver calls per second so a large
	// subscription set cannot hammer the upstream sources.
	upstreamRateLimit = rate.Limit(5)
	upstreamBurst     = 5
)

// resolveFunc resolves one symbol. The poller never supplies broker
// credentials; callers bind market detection inside the closure.
type resolveFunc func(ctx context.Context, symbol string) (*stock.Quote, error)

// Poller refreshes subscribed symbols on a fixed cadence and pushes
// updates to the hub.
// ⭐ SSOT: 구독 심볼 폴링 주기 관리는 이 폴러에서만
type Poller struct {
	resolve resolveFunc
	cache   *QuoteCache
	hub     *Hub
	logger  *logger.Logger
	limiter *rate.Limiter

	mu   sync.Mutex
	refs map[string]int // symbol -> subscriber count

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewPoller creates a poller. resolve is called once per subscribed
// symbol per tick.
func NewPoller(resolve func(ctx context.Context, symbol string) (*stock.Quote, error), cache *QuoteCache, hub *Hub, log *logger.Logger) *Poller {
	return &Poller{
		resolve: resolve,
		cache:   cache,
		hub:     hub,
		logger:  log,
		limiter: rate.NewLimiter(upstreamRateLimit, upstreamBurst),
		refs:    make(map[string]int),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Subscribe adds a symbol to the polling set and fires an immediate
// refresh when it is new.
func (p *Poller) Subscribe(ctx context.Context, symbol string) {
	p.mu.Lock()
	p.refs[symbol]++
	first := p.refs[symbol] == 1
	p.mu.Unlock()

	if first {
		go p.refreshOne(ctx, symbol)
	}
}

// Unsubscribe drops one subscriber; the symbol leaves the polling set
// when its count reaches zero.
func (p *Poller) Unsubscribe(symbol string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.refs[symbol] <= 1 {
		delete(p.refs, symbol)
		return
	}
	p.refs[symbol]--
}

// Start runs the polling loop until Stop or context cancellation.
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting quote poller")

	go func() {
		defer close(p.doneCh)

		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.refreshAll(ctx)
			}
		}
	}()
}

// Stop halts the polling loop and waits for it to exit.
func (p *Poller) Stop() {
	close(p.stopCh)
	<-p.doneCh
	p.logger.Info("Quote poller stopped")
}

func (p *Poller) subscribed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	symbols := make([]string, 0, len(p.refs))
	for symbol := range p.refs {
		symbols = append(symbols, symbol)
	}
	return symbols
}

func (p *Poller) refreshAll(ctx context.Context) {
	for _, symbol := range p.subscribed() {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}
		p.refreshOne(ctx, symbol)
	}
}

func (p *Poller) refreshOne(ctx context.Context, symbol string) {
	quote, err := p.resolve(ctx, symbol)
	if err != nil {
		// 일시 실패는 다음 틱으로 미룬다
		p.logger.WithError(err).WithField("symbol", symbol).Debug("Quote refresh failed")
		return
	}

	if p.cache.Update(quote) && p.hub != nil {
		p.hub.Broadcast(quote)
	}
}
