package quote

import (
	"context"
	"fmt"

	"github.com/joonwoo/stockfolio/backend/internal/external/kis"
	"github.com/joonwoo/stockfolio/backend/internal/market"
	"github.com/joonwoo/stockfolio/backend/internal/stock"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

// KrxQuoteSource is the mobile-web finance source for Korean intraday
// quotes (freshest prices, sparse OHLC fields).
type KrxQuoteSource interface {
	GetBasicQuote(ctx context.Context, symbol string) (*stock.Quote, error)
}

// GlobalQuoteSource is the general finance source covering global
// listings plus suffix-addressed Korean listings, and historical bars.
type GlobalQuoteSource interface {
	GetQuote(ctx context.Context, symbol string) (*stock.Quote, error)
	GetHistory(ctx context.Context, symbol, rng, interval string) ([]stock.HistoricalDataPoint, error)
}

// BrokerageSource is the token-authenticated brokerage API. Only
// consulted when the caller supplies a credential pair.
type BrokerageSource interface {
	GetQuote(ctx context.Context, symbol string, creds kis.Credentials) (*stock.Quote, error)
}

// NameSource resolves local Korean display names for ticker codes.
type NameSource interface {
	KoreanName(symbol string) string
}

// Resolver runs the fallback-ordered quote resolution chain.
// ⭐ SSOT: 시세 조회 폴백 체인은 이 리졸버에서만
//
// KRX 체인 우선순위: KIS(키 있을 때, 단독) → 네이버 모바일 → Yahoo.
// 모바일 소스는 국내 장중 시세가 가장 빠르지만 OHLC가 비어올 수 있어
// 히스토리로 보완하고, Yahoo는 커버리지가 넓은 최종 폴백이다.
type Resolver struct {
	krx       KrxQuoteSource
	global    GlobalQuoteSource
	brokerage BrokerageSource
	names     NameSource
	logger    *logger.Logger
}

// NewResolver wires the three upstream sources and the local name table.
// names may be nil when no reference data is loaded.
func NewResolver(krx KrxQuoteSource, global GlobalQuoteSource, brokerage BrokerageSource, names NameSource, log *logger.Logger) *Resolver {
	return &Resolver{
		krx:       krx,
		global:    global,
		brokerage: brokerage,
		names:     names,
		logger:    log,
	}
}

// tierStatus tags the outcome of one fallback tier.
type tierStatus int

const (
	tierSucceeded  tierStatus = iota // usable quote, return it
	tierIncomplete                   // usable quote, OHLC/52주 보완 필요
	tierFailed                       // move to the next tier
)

type tierResult struct {
	quote  *stock.Quote
	status tierStatus
	err    error
}

type tier struct {
	name string
	run  func(ctx context.Context) tierResult
}

// GetQuote resolves one symbol. A caller-supplied credential pair routes
// to the brokerage source exclusively: its failure is reported, not
// masked by the fallback chain. Fails with ErrQuoteUnavailable only
// when every tier in the chain failed.
func (r *Resolver) GetQuote(ctx context.Context, symbol string, mkt stock.Market, creds *kis.Credentials) (*stock.Quote, error) {
	if mkt != stock.MarketKRX && !market.IsKrxSymbol(symbol) {
		return r.globalTier(ctx, symbol)
	}

	if creds != nil {
		return r.brokerage.GetQuote(ctx, symbol, *creds)
	}

	tiers := []tier{
		{name: "naver-mobile", run: func(ctx context.Context) tierResult {
			return r.naverTier(ctx, symbol)
		}},
		{name: "yahoo-krx", run: func(ctx context.Context) tierResult {
			return r.yahooKrxTier(ctx, symbol)
		}},
	}

	var lastErr error
	for _, t := range tiers {
		result := t.run(ctx)
		switch result.status {
		case tierSucceeded:
			return result.quote, nil
		case tierIncomplete:
			// 보완 실패는 무시하고 원본 시세를 반환한다
			return r.backfill(ctx, symbol, result.quote), nil
		case tierFailed:
			r.logger.WithError(result.err).WithFields(map[string]interface{}{
				"symbol": symbol,
				"tier":   t.name,
			}).Debug("Quote tier failed, trying next")
			lastErr = result.err
		}
	}

	return nil, fmt.Errorf("%w: %s: %w", stock.ErrQuoteUnavailable, symbol, lastErr)
}

// globalTier is the single-attempt path for non-KRX symbols.
func (r *Resolver) globalTier(ctx context.Context, symbol string) (*stock.Quote, error) {
	quote, err := r.global.GetQuote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", stock.ErrQuoteUnavailable, symbol, err)
	}
	return quote, nil
}

// naverTier fetches the mobile basic quote and classifies completeness.
func (r *Resolver) naverTier(ctx context.Context, symbol string) tierResult {
	quote, err := r.krx.GetBasicQuote(ctx, symbol)
	if err != nil {
		return tierResult{status: tierFailed, err: err}
	}

	quote = r.withLocalName(symbol, quote)

	if isIncomplete(quote) {
		return tierResult{quote: quote, status: tierIncomplete}
	}
	return tierResult{quote: quote, status: tierSucceeded}
}

// yahooKrxTier probes exchange suffixes to locate the KRX listing on
// the general source. Terminal tier of the KRX chain.
func (r *Resolver) yahooKrxTier(ctx context.Context, symbol string) tierResult {
	var lastErr error
	for _, suffix := range []string{".KS", ".KQ"} {
		quote, err := r.global.GetQuote(ctx, symbol+suffix)
		if err != nil {
			lastErr = err
			continue
		}

		// Rewrite the suffixed identity back to the bare KRX code
		q := *quote
		q.Symbol = symbol
		q.Market = stock.MarketKRX
		q.Currency = stock.CurrencyKRW
		q.MarketStatus = market.CurrentStatus(stock.MarketKRX)
		return tierResult{quote: r.withLocalName(symbol, &q), status: tierSucceeded}
	}
	return tierResult{status: tierFailed, err: lastErr}
}

// isIncomplete reports whether a quote needs historical enrichment:
// the whole OHLC block is missing, or both 52-week bounds are.
func isIncomplete(q *stock.Quote) bool {
	ohlcMissing := q.Open == 0 && q.High == 0 && q.Low == 0
	week52Missing := q.High52Week == 0 && q.Low52Week == 0
	return ohlcMissing || week52Missing
}

// backfill enriches missing OHLC/52-week fields from a one-year daily
// history (copy-on-enrich). Fields already present are never
// overwritten; price/change fields are untouched. Any failure returns
// the original quote unchanged.
func (r *Resolver) backfill(ctx context.Context, symbol string, quote *stock.Quote) *stock.Quote {
	history, err := r.GetHistory(ctx, symbol, stock.MarketKRX, "1y", "1d")
	if err != nil {
		r.logger.WithError(err).WithField("symbol", symbol).Debug("Quote backfill failed")
		return quote
	}

	valid := history[:0:0]
	for _, bar := range history {
		if bar.Close > 0 {
			valid = append(valid, bar)
		}
	}
	if len(valid) == 0 {
		return quote
	}

	q := *quote
	last := valid[len(valid)-1]
	if q.Open == 0 {
		q.Open = last.Open
	}
	if q.High == 0 {
		q.High = last.High
	}
	if q.Low == 0 {
		q.Low = last.Low
	}

	if q.High52Week == 0 {
		for _, bar := range valid {
			if bar.High > q.High52Week {
				q.High52Week = bar.High
			}
		}
	}
	if q.Low52Week == 0 {
		low := valid[0].Low
		for _, bar := range valid[1:] {
			if bar.Low < low {
				low = bar.Low
			}
		}
		q.Low52Week = low
	}

	return &q
}

// withLocalName applies the display-name resolution order: local Korean
// reference name > source-provided name > raw symbol.
func (r *Resolver) withLocalName(symbol string, quote *stock.Quote) *stock.Quote {
	if r.names == nil {
		return quote
	}
	if name := r.names.KoreanName(symbol); name != "" && name != quote.Name {
		q := *quote
		q.Name = name
		return &q
	}
	return quote
}
