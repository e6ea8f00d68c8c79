package portfolio

import (
	"time"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
)

// Item is one holding as the owner entered it. The valuation engine
// treats it as read-only input.
type Item struct {
	ID       string         `json:"id"`
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
	Market   stock.Market   `json:"market"`
	Currency stock.Currency `json:"currency"`
	AvgPrice float64        `json:"avgPrice"` // 1주당 매수 단가
	Quantity int64          `json:"quantity"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// HoldingReturn is the derived valuation for one holding.
// marketValue is in the holding's native currency; the Krw variants
// are normalized with the summary's exchange rate.
type HoldingReturn struct {
	Item

	CurrentPrice   float64 `json:"currentPrice"`
	CostBasis      float64 `json:"costBasis"`
	CostBasisKrw   float64 `json:"costBasisKrw"`
	MarketValue    float64 `json:"marketValue"`
	MarketValueKrw float64 `json:"marketValueKrw"`
	ReturnAmount   float64 `json:"returnAmount"`
	ReturnPercent  float64 `json:"returnPercent"`
	Weight         float64 `json:"weight"` // 0~100, KRW 시가총액 기준
}

// Summary aggregates a portfolio valuation. Totals are KRW-normalized.
// Constructed fresh on every valuation call, never persisted.
type Summary struct {
	TotalCostBasis     float64         `json:"totalCostBasis"`
	TotalMarketValue   float64         `json:"totalMarketValue"`
	TotalReturnAmount  float64         `json:"totalReturnAmount"`
	TotalReturnPercent float64         `json:"totalReturnPercent"`
	ExchangeRate       float64         `json:"exchangeRate"`
	Holdings           []HoldingReturn `json:"holdings"`
}
