package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/joonwoo/stockfolio/backend/internal/external/exchange"
	"github.com/joonwoo/stockfolio/backend/internal/portfolio"
	"github.com/joonwoo/stockfolio/backend/internal/quote"
	"github.com/joonwoo/stockfolio/backend/internal/stock"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

const maxImportSize = 1 << 20 // 1MB

// PortfolioHandler handles holdings CRUD, valuation and CSV transfer
// ⭐ SSOT: 포트폴리오 API 핸들러는 이 구조체에서만
type PortfolioHandler struct {
	repo   *portfolio.Repository
	quotes *quote.Resolver
	rates  RateProvider
	logger *logger.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(repo *portfolio.Repository, quotes *quote.Resolver, rates RateProvider, log *logger.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		repo:   repo,
		quotes: quotes,
		rates:  rates,
		logger: log,
	}
}

// List returns the user's holdings
// GET /api/portfolio
func (h *PortfolioHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context(), userID(r))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list holdings")
		respondError(w, http.StatusInternalServerError, "Failed to list holdings")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// AddRequest is the POST /api/portfolio body.
type AddRequest struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Market   string  `json:"market"`
	Currency string  `json:"currency"`
	AvgPrice float64 `json:"avgPrice"`
	Quantity int64   `json:"quantity"`
}

// Add inserts a holding
// POST /api/portfolio
func (h *PortfolioHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := validateHolding(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.repo.Add(r.Context(), userID(r), item)
	if err != nil {
		h.logger.WithError(err).Error("Failed to add holding")
		respondError(w, http.StatusInternalServerError, "Failed to add holding")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// UpdateRequest is the PUT /api/portfolio/{id} body.
type UpdateRequest struct {
	AvgPrice float64 `json:"avgPrice"`
	Quantity int64   `json:"quantity"`
}

// Update changes average price and quantity
// PUT /api/portfolio/{id}
func (h *PortfolioHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req UpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AvgPrice <= 0 || req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "avgPrice and quantity must be positive")
		return
	}

	item, err := h.repo.Update(r.Context(), userID(r), id, req.AvgPrice, req.Quantity)
	if err != nil {
		if errors.Is(err, portfolio.ErrHoldingNotFound) {
			respondError(w, http.StatusNotFound, "Holding not found")
			return
		}
		h.logger.WithError(err).Error("Failed to update holding")
		respondError(w, http.StatusInternalServerError, "Failed to update holding")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// Delete removes a holding
// DELETE /api/portfolio/{id}
func (h *PortfolioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.repo.Delete(r.Context(), userID(r), id); err != nil {
		if errors.Is(err, portfolio.ErrHoldingNotFound) {
			respondError(w, http.StatusNotFound, "Holding not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete holding")
		respondError(w, http.StatusInternalServerError, "Failed to delete holding")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Summary values the whole portfolio with live quotes
// GET /api/portfolio/summary
//
// 개별 종목 시세 실패는 치명적이지 않다: 해당 종목은 매수 단가로
// 평가하고 errors 필드로 보고한다.
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.repo.List(ctx, userID(r))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list holdings")
		respondError(w, http.StatusInternalServerError, "Failed to list holdings")
		return
	}

	quotes := make(map[string]*stock.Quote, len(items))
	quoteErrors := make(map[string]string)
	for _, item := range items {
		if _, done := quotes[item.Symbol]; done {
			continue
		}
		q, err := h.quotes.GetQuote(ctx, item.Symbol, item.Market, nil)
		if err != nil {
			h.logger.WithError(err).WithField("symbol", item.Symbol).Warn("Summary quote failed")
			quoteErrors[item.Symbol] = err.Error()
			continue
		}
		quotes[item.Symbol] = q
	}

	rate, err := h.rates.GetUsdKrwRate(ctx)
	if err != nil {
		h.logger.WithError(err).Warn("Exchange rate unavailable, using default")
		rate = exchange.DefaultRate
	}

	summary := portfolio.Summarize(items, quotes, rate)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"summary": summary,
		"errors":  quoteErrors,
	})
}

// Export streams the portfolio as CSV
// GET /api/portfolio/export
func (h *PortfolioHandler) Export(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context(), userID(r))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list holdings")
		respondError(w, http.StatusInternalServerError, "Failed to list holdings")
		return
	}

	data, err := portfolio.ExportCSV(items)
	if err != nil {
		h.logger.WithError(err).Error("CSV export failed")
		respondError(w, http.StatusInternalServerError, "Export failed")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="portfolio.csv"`)
	w.Write(data)
}

// Import replaces the portfolio from an uploaded CSV
// POST /api/portfolio/import
func (h *PortfolioHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}

	items, rowErrs := portfolio.ImportCSV(data)
	if len(items) == 0 && len(rowErrs) > 0 {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"imported":  0,
			"rowErrors": rowErrs,
		})
		return
	}

	if err := h.repo.Replace(r.Context(), userID(r), items); err != nil {
		h.logger.WithError(err).Error("Failed to replace holdings")
		respondError(w, http.StatusInternalServerError, "Import failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"imported":  len(items),
		"rowErrors": rowErrs,
	})
}

func validateHolding(req AddRequest) (portfolio.Item, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return portfolio.Item{}, errors.New("symbol is required")
	}

	mkt := stock.Market(strings.ToUpper(req.Market))
	switch mkt {
	case stock.MarketKRX, stock.MarketNYSE, stock.MarketNASDAQ:
	default:
		return portfolio.Item{}, errors.New("market must be one of KRX, NYSE, NASDAQ")
	}

	cur := stock.Currency(strings.ToUpper(req.Currency))
	if cur != stock.CurrencyKRW && cur != stock.CurrencyUSD {
		return portfolio.Item{}, errors.New("currency must be KRW or USD")
	}

	if req.AvgPrice <= 0 {
		return portfolio.Item{}, errors.New("avgPrice must be positive")
	}
	if req.Quantity <= 0 {
		return portfolio.Item{}, errors.New("quantity must be positive")
	}

	return portfolio.Item{
		Symbol:   symbol,
		Name:     strings.TrimSpace(req.Name),
		Market:   mkt,
		Currency: cur,
		AvgPrice: req.AvgPrice,
		Quantity: req.Quantity,
	}, nil
}
