package naver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
	"github.com/joonwoo/stockfolio/backend/pkg/config"
	"github.com/joonwoo/stockfolio/backend/pkg/httputil"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{Env: "development", LogLevel: "error", LogFormat: "json"}
	log := logger.New(cfg)
	httpClient := httputil.New(cfg, log).DisableRetry()

	return NewClient(httpClient, log, server.URL, server.URL)
}

func TestParseKRW(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"4,180", 4180},
		{"-58", -58},
		{"1,234,567", 1234567},
		{"1.41", 1.41},
		{"", 0},
		{"N/A", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseKRW(tt.input); got != tt.want {
				t.Errorf("parseKRW(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestGetBasicQuote(t *testing.T) {
	body := `{
		"stockCode":"005930","stockName":"삼성전자",
		"closePrice":"72,500","compareToPreviousClosePrice":"1,200",
		"fluctuationsRatio":"1.68",
		"openPrice":"71,800","highPrice":"72,900","lowPrice":"71,500",
		"previousClosePrice":"71,300",
		"accumulatedTradingVolume":"12,345,678"
	}`

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/stock/005930/basic" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(body))
	}))

	quote, err := client.GetBasicQuote(context.Background(), "005930")
	if err != nil {
		t.Fatalf("GetBasicQuote() failed: %v", err)
	}

	if quote.CurrentPrice != 72500 {
		t.Errorf("CurrentPrice = %v, want 72500", quote.CurrentPrice)
	}
	if quote.Change != 1200 {
		t.Errorf("Change = %v, want 1200", quote.Change)
	}
	if quote.ChangePercent != 1.68 {
		t.Errorf("ChangePercent = %v, want 1.68", quote.ChangePercent)
	}
	if quote.PreviousClose != 71300 {
		t.Errorf("PreviousClose = %v, want 71300", quote.PreviousClose)
	}
	if quote.Market != stock.MarketKRX || quote.Currency != stock.CurrencyKRW {
		t.Errorf("Market/Currency = %s/%s, want KRX/KRW", quote.Market, quote.Currency)
	}
	if quote.Name != "삼성전자" {
		t.Errorf("Name = %s, want 삼성전자", quote.Name)
	}

	// 52-week bounds are not served by the mobile source
	if quote.High52Week != 0 || quote.Low52Week != 0 {
		t.Errorf("52-week bounds = %v/%v, want 0/0", quote.High52Week, quote.Low52Week)
	}
}

func TestGetBasicQuoteDerivesPreviousClose(t *testing.T) {
	body := `{"closePrice":"4,180","compareToPreviousClosePrice":"-58","fluctuationsRatio":"-1.37"}`

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))

	quote, err := client.GetBasicQuote(context.Background(), "123456")
	if err != nil {
		t.Fatalf("GetBasicQuote() failed: %v", err)
	}

	// previousClose = currentPrice - change when absent upstream
	if quote.PreviousClose != 4238 {
		t.Errorf("PreviousClose = %v, want 4238", quote.PreviousClose)
	}
	// Name falls back to the raw symbol
	if quote.Name != "123456" {
		t.Errorf("Name = %s, want 123456", quote.Name)
	}
}

func TestGetBasicQuoteZeroPrice(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"closePrice":"0"}`))
	}))

	_, err := client.GetBasicQuote(context.Background(), "005930")
	if !errors.Is(err, stock.ErrInvalidQuoteData) {
		t.Errorf("Expected ErrInvalidQuoteData for zero price, got %v", err)
	}
}

func TestGetBasicQuoteUpstreamDown(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := client.GetBasicQuote(context.Background(), "005930")
	if !errors.Is(err, stock.ErrUpstreamUnavailable) {
		t.Errorf("Expected ErrUpstreamUnavailable, got %v", err)
	}
}
