package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/joonwoo/stockfolio/backend/internal/external/kis"
	"github.com/joonwoo/stockfolio/backend/internal/market"
	"github.com/joonwoo/stockfolio/backend/internal/quote"
	"github.com/joonwoo/stockfolio/backend/internal/search"
	"github.com/joonwoo/stockfolio/backend/internal/stock"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

// RateProvider exposes the current USD/KRW rate.
type RateProvider interface {
	GetUsdKrwRate(ctx context.Context) (float64, error)
}

// StockHandler handles quote, history, search and exchange-rate
// endpoints
// ⭐ SSOT: 시세 API 핸들러는 이 구조체에서만
type StockHandler struct {
	quotes   *quote.Resolver
	searches *search.Resolver
	rates    RateProvider
	fallback *kis.Credentials // .env 기본 KIS 키, 없으면 nil
	logger   *logger.Logger
}

// NewStockHandler creates a new stock handler. fallback is the
// server-level KIS credential pair used when a request carries none.
func NewStockHandler(quotes *quote.Resolver, searches *search.Resolver, rates RateProvider, fallback *kis.Credentials, log *logger.Logger) *StockHandler {
	return &StockHandler{
		quotes:   quotes,
		searches: searches,
		rates:    rates,
		fallback: fallback,
		logger:   log,
	}
}

// GetQuote resolves one symbol
// GET /api/stocks/{symbol}/quote?market=
func (h *StockHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	mkt := requestedMarket(r, symbol)

	q, err := h.quotes.GetQuote(r.Context(), symbol, mkt, h.requestCredentials(r))
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Warn("Quote resolution failed")
		if errors.Is(err, stock.ErrQuoteUnavailable) {
			respondError(w, http.StatusBadGateway, "Quote unavailable for "+symbol)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to resolve quote")
		return
	}

	respondJSON(w, http.StatusOK, q)
}

// GetHistory returns OHLCV bars
// GET /api/stocks/{symbol}/history?range=&interval=&market=
func (h *StockHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	mkt := requestedMarket(r, symbol)

	rng := r.URL.Query().Get("range")
	if rng == "" {
		rng = "1mo"
	}
	interval := r.URL.Query().Get("interval") // 비면 범위에서 유도

	points, err := h.quotes.GetHistory(r.Context(), symbol, mkt, rng, interval)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Warn("History fetch failed")
		respondError(w, http.StatusBadGateway, "History unavailable for "+symbol)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"range":  rng,
		"points": points,
	})
}

// Search dispatches a symbol/name query
// GET /api/search?q=
func (h *StockHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		respondError(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	results, err := h.searches.Search(r.Context(), query)
	if err != nil {
		h.logger.WithError(err).WithField("query", query).Error("Search failed")
		if errors.Is(err, stock.ErrNoSearchResults) {
			respondError(w, http.StatusBadGateway, "Search source unavailable")
			return
		}
		respondError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": results,
	})
}

// GetExchangeRate returns the cached-or-fresh USD/KRW rate
// GET /api/exchange-rate
func (h *StockHandler) GetExchangeRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.rates.GetUsdKrwRate(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Exchange rate fetch failed")
		respondError(w, http.StatusBadGateway, "Exchange rate unavailable")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"base":  "USD",
		"quote": "KRW",
		"rate":  rate,
	})
}

// requestedMarket honors an explicit market parameter, falling back to
// symbol-shape classification.
func requestedMarket(r *http.Request, symbol string) stock.Market {
	switch stock.Market(strings.ToUpper(r.URL.Query().Get("market"))) {
	case stock.MarketKRX:
		return stock.MarketKRX
	case stock.MarketNYSE:
		return stock.MarketNYSE
	case stock.MarketNASDAQ:
		return stock.MarketNASDAQ
	}
	return market.Detect(symbol)
}

// credentials extracts the optional per-request KIS key pair.
func credentials(r *http.Request) *kis.Credentials {
	appKey := r.Header.Get("X-KIS-AppKey")
	appSecret := r.Header.Get("X-KIS-AppSecret")
	if appKey == "" || appSecret == "" {
		return nil
	}
	return &kis.Credentials{AppKey: appKey, AppSecret: appSecret}
}

// requestCredentials prefers the request's key pair over the
// server-level default.
func (h *StockHandler) requestCredentials(r *http.Request) *kis.Credentials {
	if creds := credentials(r); creds != nil {
		return creds
	}
	return h.fallback
}
