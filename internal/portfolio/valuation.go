package portfolio

import (
	"github.com/joonwoo/stockfolio/backend/internal/stock"
)

// Summarize values a portfolio against live quotes and one USD/KRW
// rate. Pure function, no I/O.
// ⭐ SSOT: 보유 종목 평가 산식은 여기서만
//
// 시세가 없는 종목은 매수 단가로 평가한다 (수익률 0의 퇴화 케이스).
// 출력 순서는 입력 순서를 그대로 따른다.
func Summarize(holdings []Item, quotes map[string]*stock.Quote, usdKrwRate float64) *Summary {
	summary := &Summary{
		ExchangeRate: usdKrwRate,
		Holdings:     make([]HoldingReturn, 0, len(holdings)),
	}

	for _, item := range holdings {
		price := item.AvgPrice
		if q, ok := quotes[item.Symbol]; ok && q != nil && q.CurrentPrice > 0 {
			price = q.CurrentPrice
		}

		qty := float64(item.Quantity)
		costBasis := item.AvgPrice * qty
		marketValue := price * qty

		toKrw := 1.0
		if item.Currency == stock.CurrencyUSD {
			toKrw = usdKrwRate
		}

		hr := HoldingReturn{
			Item:           item,
			CurrentPrice:   price,
			CostBasis:      costBasis,
			CostBasisKrw:   costBasis * toKrw,
			MarketValue:    marketValue,
			MarketValueKrw: marketValue * toKrw,
			ReturnAmount:   marketValue - costBasis,
		}
		if costBasis > 0 {
			hr.ReturnPercent = hr.ReturnAmount / costBasis * 100
		}

		summary.TotalCostBasis += hr.CostBasisKrw
		summary.TotalMarketValue += hr.MarketValueKrw
		summary.Holdings = append(summary.Holdings, hr)
	}

	summary.TotalReturnAmount = summary.TotalMarketValue - summary.TotalCostBasis
	if summary.TotalCostBasis > 0 {
		summary.TotalReturnPercent = summary.TotalReturnAmount / summary.TotalCostBasis * 100
	}

	if summary.TotalMarketValue > 0 {
		for i := range summary.Holdings {
			summary.Holdings[i].Weight = summary.Holdings[i].MarketValueKrw / summary.TotalMarketValue * 100
		}
	}

	return summary
}
