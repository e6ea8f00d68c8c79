package quote

import (
	"context"
	"fmt"

	"github.com/joonwoo/stockfolio/backend/internal/market"
	"github.com/joonwoo/stockfolio/backend/internal/stock"
)

// GetHistory retrieves OHLCV bars for one symbol, chronological, may be
// empty. An empty interval is derived from the range by the source.
//
// KRX 종목은 업스트림이 거래소 접미사를 요구한다: .KS(KOSPI) 먼저,
// 실패하면 .KQ(KOSDAQ). 접미사별 응답을 합치지 않고 첫 번째 비오류
// 응답을 그대로 반환한다 (빈 목록이어도).
func (r *Resolver) GetHistory(ctx context.Context, symbol string, mkt stock.Market, rng, interval string) ([]stock.HistoricalDataPoint, error) {
	if mkt != stock.MarketKRX && !market.IsKrxSymbol(symbol) {
		points, err := r.global.GetHistory(ctx, symbol, rng, interval)
		if err != nil {
			return nil, fmt.Errorf("history %s: %w", symbol, err)
		}
		return points, nil
	}

	for _, suffix := range []string{".KS", ".KQ"} {
		points, err := r.global.GetHistory(ctx, symbol+suffix, rng, interval)
		if err == nil {
			return points, nil
		}
		r.logger.WithError(err).WithFields(map[string]interface{}{
			"symbol": symbol,
			"suffix": suffix,
		}).Debug("History suffix probe failed")
	}

	// 두 접미사 모두 실패: 데이터 없음으로 간주
	return []stock.HistoricalDataPoint{}, nil
}
