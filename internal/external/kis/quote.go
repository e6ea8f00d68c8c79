package kis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/joonwoo/stockfolio/backend/internal/market"
	"github.com/joonwoo/stockfolio/backend/internal/stock"
)

// quoteOutput is the inquire-price payload. KIS 필드명은 축약 한글
// 로마자 표기를 따른다 (stck_prpr = 주식 현재가 등).
type quoteOutput struct {
	StckPrpr     string `json:"stck_prpr"`      // 현재가
	StckPrdyClpr string `json:"stck_prdy_clpr"` // 전일 종가
	PrdyVrss     string `json:"prdy_vrss"`      // 전일 대비
	PrdyCtrt     string `json:"prdy_ctrt"`      // 전일 대비율
	AcmlVol      string `json:"acml_vol"`       // 누적 거래량
	StckOprc     string `json:"stck_oprc"`      // 시가
	StckHgpr     string `json:"stck_hgpr"`      // 고가
	StckLwpr     string `json:"stck_lwpr"`      // 저가
	W52Hgpr      string `json:"w52_hgpr"`       // 52주 최고가
	W52Lwpr      string `json:"w52_lwpr"`       // 52주 최저가
	HtsKorIsnm   string `json:"hts_kor_isnm"`   // 한글 종목명
}

type quoteResponse struct {
	Output quoteOutput `json:"output"`
}

// GetQuote fetches a real-time KRX quote using the caller's credential
// pair. The brokerage source is authoritative; its errors propagate to
// the caller without masking.
func (c *Client) GetQuote(ctx context.Context, symbol string, creds Credentials) (*stock.Quote, error) {
	path := fmt.Sprintf(
		"/uapi/domestic-stock/v1/quotations/inquire-price?fid_cond_mrkt_div_code=J&fid_input_iscd=%s",
		symbol,
	)

	resp, err := c.request(ctx, path, "FHKST01010100", creds)
	if err != nil {
		return nil, fmt.Errorf("%w: quote request failed: %v", stock.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: quote status %d (%s)", stock.ErrUpstreamUnavailable, resp.StatusCode, symbol)
	}

	var data quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode quote response: %v", stock.ErrUpstreamUnavailable, err)
	}

	quote, err := normalizeOutput(symbol, &data.Output)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"price":  quote.CurrentPrice,
	}).Debug("Fetched KIS quote")

	return quote, nil
}

// normalizeOutput maps the inquire-price output into the canonical
// quote model.
func normalizeOutput(symbol string, o *quoteOutput) (*stock.Quote, error) {
	currentPrice := parseNum(o.StckPrpr)
	if currentPrice <= 0 {
		return nil, fmt.Errorf("%w: no usable price for %s", stock.ErrInvalidQuoteData, symbol)
	}

	name := o.HtsKorIsnm
	if name == "" {
		name = symbol
	}

	return &stock.Quote{
		Symbol:        symbol,
		Name:          name,
		Market:        stock.MarketKRX,
		Currency:      stock.CurrencyKRW,
		CurrentPrice:  currentPrice,
		PreviousClose: parseNum(o.StckPrdyClpr),
		Change:        parseNum(o.PrdyVrss),
		ChangePercent: parseNum(o.PrdyCtrt),
		Volume:        parseNum(o.AcmlVol),
		Open:          parseNum(o.StckOprc),
		High:          parseNum(o.StckHgpr),
		Low:           parseNum(o.StckLwpr),
		High52Week:    parseNum(o.W52Hgpr),
		Low52Week:     parseNum(o.W52Lwpr),
		MarketStatus:  market.CurrentStatus(stock.MarketKRX),
		UpdatedAt:     time.Now(),
	}, nil
}

// parseNum parses KIS numeric strings; absent or malformed → 0.
func parseNum(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
