package stock

import "time"

// Market identifies the listing exchange of an instrument.
type Market string

const (
	MarketKRX    Market = "KRX"
	MarketNYSE   Market = "NYSE"
	MarketNASDAQ Market = "NASDAQ"
)

// Currency is the trading currency of an instrument.
type Currency string

const (
	CurrencyKRW Currency = "KRW"
	CurrencyUSD Currency = "USD"
)

// MarketStatus describes the current trading session state.
type MarketStatus string

const (
	StatusPreMarket  MarketStatus = "PRE_MARKET"
	StatusOpen       MarketStatus = "OPEN"
	StatusClosed     MarketStatus = "CLOSED"
	StatusAfterHours MarketStatus = "AFTER_HOURS"
)

// AssetType distinguishes plain stocks from ETFs in search results.
type AssetType string

const (
	AssetStock AssetType = "stock"
	AssetETF   AssetType = "etf"
)

// Quote is a normalized point-in-time snapshot for one instrument.
// Constructed fresh per resolution call and never mutated; enrichment
// produces a copy. Zero is the "unknown" sentinel for OHLC and 52-week
// fields, never for CurrentPrice once resolved.
type Quote struct {
	Symbol        string       `json:"symbol"`
	Name          string       `json:"name"`
	Market        Market       `json:"market"`
	Currency      Currency     `json:"currency"`
	CurrentPrice  float64      `json:"currentPrice"`
	PreviousClose float64      `json:"previousClose"`
	Change        float64      `json:"change"`
	ChangePercent float64      `json:"changePercent"`
	Volume        float64      `json:"volume"`
	Open          float64      `json:"open"`
	High          float64      `json:"high"`
	Low           float64      `json:"low"`
	High52Week    float64      `json:"high52Week"`
	Low52Week     float64      `json:"low52Week"`
	MarketStatus  MarketStatus `json:"marketStatus"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// SearchResult is one symbol lookup hit, either from a remote search
// source or the local reference data.
type SearchResult struct {
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	Market    Market    `json:"market"`
	Currency  Currency  `json:"currency"`
	AssetType AssetType `json:"assetType,omitempty"`
}

// HistoricalDataPoint is one OHLCV bar. A bar with Close <= 0 is
// invalid and must be filtered by consumers before aggregation.
type HistoricalDataPoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// DeriveChange fills Change/ChangePercent from CurrentPrice and
// PreviousClose. Source-supplied explicit values take precedence, so
// callers only invoke this when the upstream omitted them.
func DeriveChange(currentPrice, previousClose float64) (change, changePercent float64) {
	change = currentPrice - previousClose
	if previousClose > 0 {
		changePercent = change / previousClose * 100
	}
	return change, changePercent
}
