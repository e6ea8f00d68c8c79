package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joonwoo/stockfolio/backend/internal/api"
	"github.com/joonwoo/stockfolio/backend/internal/api/handlers"
	"github.com/joonwoo/stockfolio/backend/internal/market"
	"github.com/joonwoo/stockfolio/backend/internal/portfolio"
	"github.com/joonwoo/stockfolio/backend/internal/realtime"
	"github.com/joonwoo/stockfolio/backend/internal/refdata"
	"github.com/joonwoo/stockfolio/backend/internal/scheduler"
	"github.com/joonwoo/stockfolio/backend/internal/scheduler/jobs"
	"github.com/joonwoo/stockfolio/backend/internal/stock"
	"github.com/joonwoo/stockfolio/backend/internal/watchlist"
	"github.com/joonwoo/stockfolio/backend/pkg/database"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버와 웹소켓 시세 스트림을 시작합니다.

Endpoints:
  GET  /health
  GET  /api/stocks/{symbol}/quote
  GET  /api/stocks/{symbol}/history
  GET  /api/search?q=
  GET  /api/exchange-rate
  CRUD /api/portfolio, /api/watchlist (DATABASE_URL 필요)
  WS   /ws/quotes?symbols=

Example:
  go run ./cmd/stockfolio api
  go run ./cmd/stockfolio api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stockfolio API Server ===")

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}
	log := a.log

	// Handlers
	deps := api.Deps{
		Stock: handlers.NewStockHandler(a.quotes, a.searches, a.rates, a.kisCredentials("", ""), log),
	}

	// Persistence-backed routes only when a database is configured
	if a.cfg.Database.URL != "" {
		db, err := database.New(a.cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		if err := db.EnsureSchema(cmd.Context()); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		log.Info("Connected to database")

		deps.Portfolio = handlers.NewPortfolioHandler(portfolio.NewRepository(db.Pool), a.quotes, a.rates, log)
		deps.Watchlist = handlers.NewWatchlistHandler(watchlist.NewRepository(db.Pool), log)
	} else {
		log.Warn("DATABASE_URL not set, portfolio and watchlist routes disabled")
	}

	// Realtime stream
	cache := realtime.NewQuoteCache(time.Minute, log)
	hub := realtime.NewHub(log)
	go hub.Run()
	defer hub.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := realtime.NewPoller(func(ctx context.Context, symbol string) (*stock.Quote, error) {
		return a.quotes.GetQuote(ctx, symbol, market.Detect(symbol), nil)
	}, cache, hub, log)
	poller.Start(ctx)
	defer poller.Stop()

	deps.Hub = hub
	deps.Poller = poller

	// Background jobs
	sched := scheduler.New(log)
	downloader := refdata.NewDownloader(a.http, log, a.cfg.Naver.FinanceBaseURL, a.cfg.RefData.Dir)
	if err := sched.AddJob(jobs.NewRefDataRefreshJob(downloader, log)); err != nil {
		return err
	}
	if err := sched.AddJob(jobs.NewRateWarmupJob(a.rates, log)); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	// Server
	router := api.NewRouter(deps, log)
	server := api.New(a.cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
