package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
	"github.com/joonwoo/stockfolio/backend/internal/watchlist"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

// WatchlistHandler handles watchlist endpoints
type WatchlistHandler struct {
	repo   *watchlist.Repository
	logger *logger.Logger
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(repo *watchlist.Repository, log *logger.Logger) *WatchlistHandler {
	return &WatchlistHandler{repo: repo, logger: log}
}

// List returns watched symbols in added order
// GET /api/watchlist
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.repo.List(r.Context(), userID(r))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list watchlist")
		respondError(w, http.StatusInternalServerError, "Failed to list watchlist")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// AddWatchRequest is the POST /api/watchlist body.
type AddWatchRequest struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Market   string `json:"market"`
	Currency string `json:"currency"`
}

// Add appends a symbol
// POST /api/watchlist
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddWatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	entry := watchlist.Entry{
		Symbol:   symbol,
		Name:     strings.TrimSpace(req.Name),
		Market:   stock.Market(strings.ToUpper(req.Market)),
		Currency: stock.Currency(strings.ToUpper(req.Currency)),
	}

	err := h.repo.Add(r.Context(), userID(r), entry)
	switch {
	case errors.Is(err, watchlist.ErrWatchlistFull):
		respondError(w, http.StatusConflict, "Watchlist is full")
	case errors.Is(err, watchlist.ErrAlreadyExists):
		respondError(w, http.StatusConflict, "Symbol already on watchlist")
	case err != nil:
		h.logger.WithError(err).Error("Failed to add watchlist entry")
		respondError(w, http.StatusInternalServerError, "Failed to add watchlist entry")
	default:
		respondJSON(w, http.StatusCreated, entry)
	}
}

// Remove deletes a watched symbol
// DELETE /api/watchlist/{symbol}
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	if err := h.repo.Remove(r.Context(), userID(r), symbol); err != nil {
		if errors.Is(err, watchlist.ErrEntryNotFound) {
			respondError(w, http.StatusNotFound, "Symbol not on watchlist")
			return
		}
		h.logger.WithError(err).Error("Failed to remove watchlist entry")
		respondError(w, http.StatusInternalServerError, "Failed to remove watchlist entry")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
