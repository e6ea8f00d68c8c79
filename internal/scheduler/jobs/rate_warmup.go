package jobs

import (
	"context"

	"github.com/joonwoo/stockfolio/backend/internal/external/exchange"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

// RateWarmupJob keeps the USD/KRW cache warm so portfolio valuations
// rarely hit the rate endpoint on the request path.
type RateWarmupJob struct {
	provider *exchange.Provider
	logger   *logger.Logger
}

func NewRateWarmupJob(provider *exchange.Provider, log *logger.Logger) *RateWarmupJob {
	return &RateWarmupJob{provider: provider, logger: log}
}

func (j *RateWarmupJob) Name() string { return "rate_warmup" }

// Schedule matches the provider's cache TTL.
func (j *RateWarmupJob) Schedule() string { return "@every 30m" }

func (j *RateWarmupJob) Run(ctx context.Context) error {
	rate, err := j.provider.GetUsdKrwRate(ctx)
	if err != nil {
		return err
	}
	j.logger.WithField("rate", rate).Debug("Exchange rate cache warmed")
	return nil
}
