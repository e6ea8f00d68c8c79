package market

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
)

func TestIsKrxSymbol(t *testing.T) {
	tests := []struct {
		symbol string
		want   bool
	}{
		{"005930", true},  // Samsung Electronics
		{"000660", true},  // SK Hynix
		{"35420", true},   // Short numeric code
		{"AAPL", false},   // US ticker
		{"GOOGL", false},  // 5-letter US ticker
		{"A", false},      // Single-letter US ticker
		{"BRK.B", true},   // Dot makes it fall outside the 1-5 letter shape
		{"ABCDEF", true},  // 6 letters, outside US ticker shape
		{"^KS11", false},  // Index symbol, never KRX
		{"^GSPC", false},  // Index symbol
		{"12A34", true},   // Mixed alnum
		{" AAPL ", false}, // Whitespace trimmed
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			assert.Equal(t, tt.want, IsKrxSymbol(tt.symbol))
		})
	}
}

func TestDetect(t *testing.T) {
	assert.Equal(t, stock.MarketKRX, Detect("005930"))
	assert.Equal(t, stock.MarketNYSE, Detect("AAPL"))

	// Index symbols are excluded from KRX by the "^" rule even for Korean
	// indices. Documented quirk of the heuristic.
	assert.Equal(t, stock.MarketNYSE, Detect("^KS11"))
}

func TestFromExchangeCode(t *testing.T) {
	tests := []struct {
		code string
		want stock.Market
	}{
		{"NMS", stock.MarketNASDAQ},
		{"NGM", stock.MarketNASDAQ},
		{"NCM", stock.MarketNASDAQ},
		{"KSC", stock.MarketKRX},
		{"KOE", stock.MarketKRX},
		{"KOQ", stock.MarketKRX},
		{"NYQ", stock.MarketNYSE},
		{"", stock.MarketNYSE},
		{"LSE", stock.MarketNYSE}, // Unrecognized defaults to NYSE
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, FromExchangeCode(tt.code))
		})
	}
}

func TestStripKoreanSuffix(t *testing.T) {
	assert.Equal(t, "005930", StripKoreanSuffix("005930.KS"))
	assert.Equal(t, "035420", StripKoreanSuffix("035420.KQ"))
	assert.Equal(t, "000100", StripKoreanSuffix("000100.KR"))
	assert.Equal(t, "AAPL", StripKoreanSuffix("AAPL"))
}
