package market

import (
	"regexp"
	"strings"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
)

// KRX 종목 여부는 심볼 모양으로만 판별하는 휴리스틱이다.
// 조회 테이블이 아니므로 5자 이하의 비미국 티커는 오분류될 수 있다.
var usTickerPattern = regexp.MustCompile(`^[A-Za-z]{1,5}$`)

// IsKrxSymbol reports whether a symbol looks like a KRX listing.
//   - "^" 접두사는 지수 심볼이므로 KRX가 아님
//   - 순수 영문 1-5자리는 미국 티커
//   - 그 외(숫자 포함, 영문+숫자 혼합 등)는 KRX
func IsKrxSymbol(symbol string) bool {
	s := strings.TrimSpace(symbol)
	if strings.HasPrefix(s, "^") {
		return false
	}
	return !usTickerPattern.MatchString(s)
}

// Detect classifies a bare symbol into a market. US tickers default to
// NYSE; refinement to NASDAQ only happens via an authoritative exchange
// code from an upstream response (FromExchangeCode).
func Detect(symbol string) stock.Market {
	if IsKrxSymbol(symbol) {
		return stock.MarketKRX
	}
	return stock.MarketNYSE
}

// FromExchangeCode maps a Yahoo Finance exchange code to a market.
// Unrecognized codes default to NYSE.
func FromExchangeCode(code string) stock.Market {
	switch code {
	case "NMS", "NGM", "NCM":
		return stock.MarketNASDAQ
	case "KSC", "KOE", "KOQ":
		return stock.MarketKRX
	default:
		return stock.MarketNYSE
	}
}

// IsKoreanExchangeCode reports whether a Yahoo exchange code belongs to
// a Korean venue. Yahoo suffixes Korean symbols with .KS/.KQ/.KR.
func IsKoreanExchangeCode(code string) bool {
	return code == "KSC" || code == "KOE" || code == "KOQ"
}

var koreanSuffixPattern = regexp.MustCompile(`\.(KS|KQ|KR)$`)

// StripKoreanSuffix removes the Yahoo exchange suffix from a Korean
// symbol so it matches the bare KRX ticker code.
func StripKoreanSuffix(symbol string) string {
	return koreanSuffixPattern.ReplaceAllString(symbol, "")
}
