package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/joonwoo/stockfolio/backend/internal/api/handlers"
	"github.com/joonwoo/stockfolio/backend/internal/realtime"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

// Deps bundles the collaborators the router exposes. Portfolio and
// Watchlist are nil when the server runs without a database; their
// routes are simply not registered.
type Deps struct {
	Stock     *handlers.StockHandler
	Portfolio *handlers.PortfolioHandler
	Watchlist *handlers.WatchlistHandler
	Hub       *realtime.Hub
	Poller    *realtime.Poller
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(deps Deps, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Quote / search / history
	api.HandleFunc("/stocks/{symbol}/quote", deps.Stock.GetQuote).Methods("GET")
	api.HandleFunc("/stocks/{symbol}/history", deps.Stock.GetHistory).Methods("GET")
	api.HandleFunc("/search", deps.Stock.Search).Methods("GET")
	api.HandleFunc("/exchange-rate", deps.Stock.GetExchangeRate).Methods("GET")

	// Portfolio
	if deps.Portfolio != nil {
		api.HandleFunc("/portfolio", deps.Portfolio.List).Methods("GET")
		api.HandleFunc("/portfolio", deps.Portfolio.Add).Methods("POST")
		api.HandleFunc("/portfolio/summary", deps.Portfolio.Summary).Methods("GET")
		api.HandleFunc("/portfolio/export", deps.Portfolio.Export).Methods("GET")
		api.HandleFunc("/portfolio/import", deps.Portfolio.Import).Methods("POST")
		api.HandleFunc("/portfolio/{id}", deps.Portfolio.Update).Methods("PUT")
		api.HandleFunc("/portfolio/{id}", deps.Portfolio.Delete).Methods("DELETE")
	}

	// Watchlist
	if deps.Watchlist != nil {
		api.HandleFunc("/watchlist", deps.Watchlist.List).Methods("GET")
		api.HandleFunc("/watchlist", deps.Watchlist.Add).Methods("POST")
		api.HandleFunc("/watchlist/{symbol}", deps.Watchlist.Remove).Methods("DELETE")
	}

	// Realtime quote stream
	if deps.Hub != nil && deps.Poller != nil {
		r.HandleFunc("/ws/quotes", func(w http.ResponseWriter, req *http.Request) {
			realtime.ServeWS(deps.Hub, deps.Poller, log, w, req)
		})
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "stockfolio-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
