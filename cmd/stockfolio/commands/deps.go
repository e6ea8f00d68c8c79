package commands

import (
	"fmt"

	"github.com/joonwoo/stockfolio/backend/internal/external/exchange"
	"github.com/joonwoo/stockfolio/backend/internal/external/kis"
	"github.com/joonwoo/stockfolio/backend/internal/external/naver"
	"github.com/joonwoo/stockfolio/backend/internal/external/yahoo"
	"github.com/joonwoo/stockfolio/backend/internal/quote"
	"github.com/joonwoo/stockfolio/backend/internal/refdata"
	"github.com/joonwoo/stockfolio/backend/internal/search"
	"github.com/joonwoo/stockfolio/backend/pkg/config"
	"github.com/joonwoo/stockfolio/backend/pkg/httputil"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
	pkgredis "github.com/joonwoo/stockfolio/backend/pkg/redis"
)

// app bundles the collaborators every command needs. The database is
// wired separately by the commands that use it.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	http     *httputil.Client
	redis    *pkgredis.Client // nil unless enabled and requested
	store    *refdata.Store
	quotes   *quote.Resolver
	searches *search.Resolver
	rates    *exchange.Provider
}

// newApp loads config and builds the resolution chain. withRedis wires
// the optional redis rate cache; one-shot commands skip it.
func newApp(withRedis bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)
	httpClient := httputil.New(cfg, log)

	store, err := refdata.Load(cfg.RefData.Dir, log)
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}

	var (
		redisClient *pkgredis.Client
		rateCache   *pkgredis.Cache
	)
	if withRedis && cfg.Redis.Enabled {
		redisClient, err = pkgredis.New(cfg)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, continuing without cache")
			redisClient = nil
		} else {
			rateCache = pkgredis.NewCache(redisClient, "stockfolio")
		}
	}

	// KIS enforces a hard per-second quota, so its client gets a
	// dedicated transport with the shared redis limiter when available.
	kisHTTP := httputil.New(cfg, log)
	if redisClient != nil {
		limiter := pkgredis.NewRateLimiter(redisClient, "stockfolio")
		kisHTTP = kisHTTP.WithRateLimiter(limiter, pkgredis.KISRateLimit)
	}

	naverClient := naver.NewClient(httpClient, log, cfg.Naver.MobileBaseURL, cfg.Naver.SearchBaseURL)
	yahooClient := yahoo.NewClient(httpClient, log, cfg.Yahoo.BaseURL)
	kisClient := kis.NewClient(kisHTTP, log, cfg.KIS.BaseURL)
	rates := exchange.NewProvider(httpClient, log, cfg.Exchange.BaseURL, cfg.Exchange.CacheTTL, rateCache)

	return &app{
		cfg:      cfg,
		log:      log,
		http:     httpClient,
		redis:    redisClient,
		store:    store,
		quotes:   quote.NewResolver(naverClient, yahooClient, kisClient, store, log),
		searches: search.NewResolver(naverClient, yahooClient, store, log),
		rates:    rates,
	}, nil
}

func (a *app) close() {
	if a.redis != nil {
		a.redis.Close()
	}
}

// kisCredentials resolves the explicit pair when both halves are set,
// falling back to the .env defaults. Returns nil when neither source
// is complete.
func (a *app) kisCredentials(appKey, appSecret string) *kis.Credentials {
	if appKey != "" && appSecret != "" {
		return &kis.Credentials{AppKey: appKey, AppSecret: appSecret}
	}
	if a.cfg.KIS.AppKey != "" && a.cfg.KIS.AppSecret != "" {
		return &kis.Credentials{AppKey: a.cfg.KIS.AppKey, AppSecret: a.cfg.KIS.AppSecret}
	}
	return nil
}
