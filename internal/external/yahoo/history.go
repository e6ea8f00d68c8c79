package yahoo

import (
	"context"
	"time"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
)

// rangeIntervals keeps point counts bounded regardless of span when the
// caller does not pin an interval.
var rangeIntervals = map[string]string{
	"1d":  "5m",
	"5d":  "15m",
	"1mo": "1d",
	"3mo": "1d",
	"6mo": "1d",
	"1y":  "1wk",
	"2y":  "1wk",
	"5y":  "1mo",
	"10y": "1mo",
	"max": "3mo",
}

// IntervalForRange returns the default bar interval for a range.
func IntervalForRange(rng string) string {
	if interval, ok := rangeIntervals[rng]; ok {
		return interval
	}
	return "1d"
}

// GetHistory fetches OHLCV bars for one symbol. Bars come back in
// chronological order; a response without bars yields an empty slice,
// not an error. Bars with close <= 0 are returned raw and filtered by
// consumers.
func (c *Client) GetHistory(ctx context.Context, symbol, rng, interval string) ([]stock.HistoricalDataPoint, error) {
	if interval == "" {
		interval = IntervalForRange(rng)
	}

	result, err := c.fetchChart(ctx, symbol, interval, rng)
	if err != nil {
		return nil, err
	}

	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return []stock.HistoricalDataPoint{}, nil
	}

	ohlcv := result.Indicators.Quote[0]
	points := make([]stock.HistoricalDataPoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		points = append(points, stock.HistoricalDataPoint{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   derefAt(ohlcv.Open, i),
			High:   derefAt(ohlcv.High, i),
			Low:    derefAt(ohlcv.Low, i),
			Close:  derefAt(ohlcv.Close, i),
			Volume: derefAt(ohlcv.Volume, i),
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"range":    rng,
		"interval": interval,
		"count":    len(points),
	}).Debug("Fetched Yahoo history")

	return points, nil
}

// derefAt reads a nullable array slot, 0 when absent or null.
func derefAt(arr []*float64, i int) float64 {
	if i >= len(arr) || arr[i] == nil {
		return 0
	}
	return *arr[i]
}
