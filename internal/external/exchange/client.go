package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
	"github.com/joonwoo/stockfolio/backend/pkg/httputil"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
	"github.com/joonwoo/stockfolio/backend/pkg/redis"
)

// DefaultRate is the last-resort USD→KRW constant callers may use
// when the provider has no cache and the upstream is down. The
// provider itself never substitutes it.
const DefaultRate = 1300.0

// redisKey persists the rate snapshot across restarts.
var redisKey = redis.RateKey("USD", "KRW")

// Provider serves the USD→KRW exchange rate with a TTL cache.
// ⭐ SSOT: 환율 조회는 이 프로바이더에서만
//
// Once populated the cache is never cleared: a stale value is served
// when a refresh fails. Concurrent callers may each trigger a refresh;
// the duplicate fetch is harmless.
type Provider struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	ttl        time.Duration

	redisCache *redis.Cache // optional second level, survives restarts

	mu        sync.Mutex
	rate      float64
	fetchedAt time.Time

	now func() time.Time
}

// NewProvider creates an exchange rate provider. redisCache may be nil.
func NewProvider(httpClient *httputil.Client, log *logger.Logger, baseURL string, ttl time.Duration, redisCache *redis.Cache) *Provider {
	if baseURL == "" {
		baseURL = "https://open.er-api.com/v6"
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Provider{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
		ttl:        ttl,
		redisCache: redisCache,
		now:        time.Now,
	}
}

type rateResponse struct {
	Rates map[string]float64 `json:"rates"`
}

type cachedRate struct {
	Rate      float64   `json:"rate"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// GetUsdKrwRate returns the USD→KRW rate, from cache when fresh.
func (p *Provider) GetUsdKrwRate(ctx context.Context) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if p.rate > 0 && now.Sub(p.fetchedAt) < p.ttl {
		return p.rate, nil
	}

	// Warm from redis once before going to the network
	if p.rate == 0 && p.redisCache != nil {
		var cached cachedRate
		if found, err := p.redisCache.Get(ctx, redisKey, &cached); err == nil && found && cached.Rate > 0 {
			p.rate = cached.Rate
			p.fetchedAt = cached.FetchedAt
			if now.Sub(p.fetchedAt) < p.ttl {
				return p.rate, nil
			}
		}
	}

	rate, err := p.fetch(ctx)
	if err != nil {
		if p.rate > 0 {
			p.logger.WithError(err).Warn("Exchange rate refresh failed, serving stale value")
			return p.rate, nil
		}
		return 0, err
	}

	p.rate = rate
	p.fetchedAt = now

	if p.redisCache != nil {
		if err := p.redisCache.Set(ctx, redisKey, cachedRate{Rate: rate, FetchedAt: now}, redis.TTLRate); err != nil {
			p.logger.WithError(err).Debug("Failed to persist exchange rate to redis")
		}
	}

	return rate, nil
}

func (p *Provider) fetch(ctx context.Context) (float64, error) {
	url := fmt.Sprintf("%s/latest/USD", p.baseURL)

	resp, err := p.httpClient.Get(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("%w: rate request failed: %v", stock.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: rate status %d", stock.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var data rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, fmt.Errorf("%w: decode rate response: %v", stock.ErrUpstreamUnavailable, err)
	}

	rate, ok := data.Rates["KRW"]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("%w: KRW rate missing in response", stock.ErrUpstreamUnavailable)
	}

	p.logger.WithField("rate", rate).Debug("Fetched USD/KRW exchange rate")

	return rate, nil
}
