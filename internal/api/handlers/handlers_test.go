package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/joonwoo/stockfolio/backend/internal/external/kis"
	"github.com/joonwoo/stockfolio/backend/internal/stock"
)

func TestRequestedMarket(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		symbol string
		want   stock.Market
	}{
		{"explicit KRX", "/api/stocks/AAPL/quote?market=KRX", "AAPL", stock.MarketKRX},
		{"explicit lowercase", "/api/stocks/005930/quote?market=nasdaq", "005930", stock.MarketNASDAQ},
		{"unknown value falls back to shape", "/api/stocks/005930/quote?market=LSE", "005930", stock.MarketKRX},
		{"no param US ticker", "/api/stocks/AAPL/quote", "AAPL", stock.MarketNYSE},
		{"no param Korean code", "/api/stocks/005930/quote", "005930", stock.MarketKRX},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			if got := requestedMarket(r, tt.symbol); got != tt.want {
				t.Errorf("requestedMarket() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCredentialsRequireBothHeaders(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/stocks/005930/quote", nil)
	if credentials(r) != nil {
		t.Error("Expected nil credentials without headers")
	}

	r.Header.Set("X-KIS-AppKey", "key-only")
	if credentials(r) != nil {
		t.Error("Expected nil credentials with app key alone")
	}

	r.Header.Set("X-KIS-AppSecret", "secret")
	creds := credentials(r)
	if creds == nil || creds.AppKey != "key-only" || creds.AppSecret != "secret" {
		t.Errorf("credentials() = %+v, want both values", creds)
	}
}

func TestRequestCredentialsFallsBackToServerPair(t *testing.T) {
	h := &StockHandler{fallback: &kis.Credentials{AppKey: "env-key", AppSecret: "env-secret"}}

	r := httptest.NewRequest("GET", "/api/stocks/005930/quote", nil)
	creds := h.requestCredentials(r)
	if creds == nil || creds.AppKey != "env-key" {
		t.Errorf("requestCredentials() = %+v, want server fallback", creds)
	}

	r.Header.Set("X-KIS-AppKey", "req-key")
	r.Header.Set("X-KIS-AppSecret", "req-secret")
	creds = h.requestCredentials(r)
	if creds == nil || creds.AppKey != "req-key" {
		t.Errorf("requestCredentials() = %+v, want request pair to win", creds)
	}

	bare := &StockHandler{}
	if bare.requestCredentials(httptest.NewRequest("GET", "/", nil)) != nil {
		t.Error("Expected nil without headers and without server pair")
	}
}

func TestUserIDDefault(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/portfolio", nil)
	if got := userID(r); got != defaultUserID {
		t.Errorf("userID() = %s, want %s", got, defaultUserID)
	}

	r.Header.Set("X-User-ID", "wonny")
	if got := userID(r); got != "wonny" {
		t.Errorf("userID() = %s, want wonny", got)
	}
}

func TestValidateHolding(t *testing.T) {
	valid := AddRequest{
		Symbol: "aapl", Name: "Apple", Market: "nasdaq", Currency: "usd",
		AvgPrice: 185.5, Quantity: 10,
	}

	item, err := validateHolding(valid)
	if err != nil {
		t.Fatalf("validateHolding() failed: %v", err)
	}
	if item.Symbol != "AAPL" || item.Market != stock.MarketNASDAQ || item.Currency != stock.CurrencyUSD {
		t.Errorf("Normalization failed: %+v", item)
	}

	bad := []AddRequest{
		{Symbol: "", Market: "KRX", Currency: "KRW", AvgPrice: 1, Quantity: 1},
		{Symbol: "005930", Market: "LSE", Currency: "KRW", AvgPrice: 1, Quantity: 1},
		{Symbol: "005930", Market: "KRX", Currency: "EUR", AvgPrice: 1, Quantity: 1},
		{Symbol: "005930", Market: "KRX", Currency: "KRW", AvgPrice: 0, Quantity: 1},
		{Symbol: "005930", Market: "KRX", Currency: "KRW", AvgPrice: 1, Quantity: 0},
	}
	for i, req := range bad {
		if _, err := validateHolding(req); err == nil {
			t.Errorf("bad[%d] accepted: %+v", i, req)
		}
	}
}
