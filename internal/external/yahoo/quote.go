package yahoo

import (
	"context"
	"fmt"
	"time"

	"github.com/joonwoo/stockfolio/backend/internal/market"
	"github.com/joonwoo/stockfolio/backend/internal/stock"
)

// GetQuote fetches and normalizes a quote for one symbol.
// interval=1m&range=1d: 오늘 분봉 + meta.regularMarketPrice 최신 현재가
func (c *Client) GetQuote(ctx context.Context, symbol string) (*stock.Quote, error) {
	result, err := c.fetchChart(ctx, symbol, "1m", "1d")
	if err != nil {
		return nil, err
	}

	quote, err := normalizeMeta(&result.Meta)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": quote.Symbol,
		"market": quote.Market,
	}).Debug("Fetched Yahoo quote")

	return quote, nil
}

// normalizeMeta maps a chart meta block into the canonical quote model.
// Explicit change/changePercent from the source win over derived values.
func normalizeMeta(meta *chartMeta) (*stock.Quote, error) {
	if meta.RegularMarketPrice == nil || *meta.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("%w: no usable price for %s", stock.ErrInvalidQuoteData, meta.Symbol)
	}
	currentPrice := *meta.RegularMarketPrice

	previousClose := currentPrice
	switch {
	case meta.ChartPreviousClose != nil:
		previousClose = *meta.ChartPreviousClose
	case meta.RegularMarketPreviousClose != nil:
		previousClose = *meta.RegularMarketPreviousClose
	case meta.PreviousClose != nil:
		previousClose = *meta.PreviousClose
	}

	change, changePercent := stock.DeriveChange(currentPrice, previousClose)
	if meta.RegularMarketChange != nil {
		change = *meta.RegularMarketChange
	}
	if meta.RegularMarketChangePercent != nil {
		changePercent = *meta.RegularMarketChangePercent
	}

	mkt := market.FromExchangeCode(meta.ExchangeName)

	currency := stock.CurrencyUSD
	if meta.Currency == "KRW" {
		currency = stock.CurrencyKRW
	}

	name := meta.ShortName
	if name == "" {
		name = meta.LongName
	}
	if name == "" {
		name = meta.Symbol
	}

	return &stock.Quote{
		Symbol:        meta.Symbol,
		Name:          name,
		Market:        mkt,
		Currency:      currency,
		CurrentPrice:  currentPrice,
		PreviousClose: previousClose,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        deref(meta.RegularMarketVolume, 0),
		Open:          deref(meta.RegularMarketOpen, currentPrice),
		High:          deref(meta.RegularMarketDayHigh, currentPrice),
		Low:           deref(meta.RegularMarketDayLow, currentPrice),
		High52Week:    deref(meta.FiftyTwoWeekHigh, currentPrice),
		Low52Week:     deref(meta.FiftyTwoWeekLow, currentPrice),
		MarketStatus:  market.CurrentStatus(mkt),
		UpdatedAt:     time.Now(),
	}, nil
}
