package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/joonwoo/stockfolio/backend/internal/market"
	"github.com/joonwoo/stockfolio/backend/internal/stock"
)

// basicResponse is the mobile basic-quote payload.
// https://m.stock.naver.com/api/stock/{code}/basic
// 숫자 필드는 쉼표 구분 문자열로 내려온다: "4,180", "-58"
type basicResponse struct {
	StockCode                    string `json:"stockCode"`
	StockName                    string `json:"stockName"`
	ClosePrice                   string `json:"closePrice"`                   // 현재가(장중) 또는 종가
	CompareToPreviousClosePrice  string `json:"compareToPreviousClosePrice"` // 전일 대비 등락
	FluctuationsRatio            string `json:"fluctuationsRatio"`           // 등락률
	OpenPrice                    string `json:"openPrice"`
	HighPrice                    string `json:"highPrice"`
	LowPrice                     string `json:"lowPrice"`
	PreviousClosePrice           string `json:"previousClosePrice"`
	AccumulatedTradingVolume     string `json:"accumulatedTradingVolume"`
}

// GetBasicQuote fetches the mobile basic quote for a KRX ticker code.
// The mobile source has the freshest Korean intraday prices but sparse
// OHLC fields; 52-week bounds are never present and normalize to 0.
func (c *Client) GetBasicQuote(ctx context.Context, symbol string) (*stock.Quote, error) {
	fullURL := fmt.Sprintf("%s/api/stock/%s/basic", c.mobileBaseURL, symbol)

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("%w: basic quote request failed: %v", stock.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: basic quote status %d (%s)", stock.ErrUpstreamUnavailable, resp.StatusCode, symbol)
	}

	var data basicResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode basic quote: %v", stock.ErrUpstreamUnavailable, err)
	}

	quote, err := normalizeBasic(symbol, &data)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"price":  quote.CurrentPrice,
	}).Debug("Fetched Naver basic quote")

	return quote, nil
}

// normalizeBasic maps the mobile payload into the canonical quote model.
func normalizeBasic(symbol string, data *basicResponse) (*stock.Quote, error) {
	currentPrice := parseKRW(data.ClosePrice)
	if currentPrice <= 0 {
		return nil, fmt.Errorf("%w: no usable price for %s", stock.ErrInvalidQuoteData, symbol)
	}

	change := parseKRW(data.CompareToPreviousClosePrice)
	changePercent := parseKRW(data.FluctuationsRatio)

	// previousClosePrice가 없으면 현재가 - 등락으로 계산
	previousClose := parseKRW(data.PreviousClosePrice)
	if previousClose == 0 {
		previousClose = currentPrice
		if change != 0 {
			previousClose = currentPrice - change
		}
	}

	name := data.StockName
	if name == "" {
		name = symbol
	}

	return &stock.Quote{
		Symbol:        symbol,
		Name:          name,
		Market:        stock.MarketKRX,
		Currency:      stock.CurrencyKRW,
		CurrentPrice:  currentPrice,
		PreviousClose: previousClose,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        parseKRW(data.AccumulatedTradingVolume),
		Open:          parseKRW(data.OpenPrice),
		High:          parseKRW(data.HighPrice),
		Low:           parseKRW(data.LowPrice),
		High52Week:    0,
		Low52Week:     0,
		MarketStatus:  market.CurrentStatus(stock.MarketKRX),
		UpdatedAt:     time.Now(),
	}, nil
}
