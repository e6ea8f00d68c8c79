package jobs

import (
	"context"

	"github.com/joonwoo/stockfolio/backend/internal/refdata"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

// RefDataRefreshJob re-downloads the Korean stock and ETF reference
// lists. Listings change rarely, so weekly is enough.
type RefDataRefreshJob struct {
	downloader *refdata.Downloader
	logger     *logger.Logger
}

func NewRefDataRefreshJob(downloader *refdata.Downloader, log *logger.Logger) *RefDataRefreshJob {
	return &RefDataRefreshJob{downloader: downloader, logger: log}
}

func (j *RefDataRefreshJob) Name() string { return "refdata_refresh" }

// Schedule runs Monday 03:00, before the KRX open.
func (j *RefDataRefreshJob) Schedule() string { return "0 0 3 * * 1" }

func (j *RefDataRefreshJob) Run(ctx context.Context) error {
	j.logger.Info("Refreshing reference data")
	return j.downloader.Run(ctx)
}
