package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
)

type searchItem struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	TypeCode string `json:"typeCode"` // 'stock' | 'index' | 'etf' ...
	TypeName string `json:"typeName"` // '코스피' | '코스닥' | '나스닥' ...
}

type searchEnvelope struct {
	Items      []searchItem `json:"items"`
	TotalCount int          `json:"totalCount"`
}

// Search queries the autocomplete endpoint for Korean-language queries.
// target=stock 단일 요청: Naver 자동완성은 target=stock에서도 ETF를
// typeCode='etf'로 반환함 (target=etf는 ac.stock.naver.com 미지원).
// An empty result set returns an empty slice, not an error.
func (c *Client) Search(ctx context.Context, query string) ([]stock.SearchResult, error) {
	fullURL := fmt.Sprintf("%s/ac?q=%s&target=stock", c.searchBaseURL, url.QueryEscape(query))

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("%w: search request failed: %v", stock.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: search status %d", stock.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var data searchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", stock.ErrUpstreamUnavailable, err)
	}

	var results []stock.SearchResult
	for _, item := range data.Items {
		assetType, keep := classifyItem(item)
		if !keep {
			continue
		}

		results = append(results, stock.SearchResult{
			Symbol:    item.Code,
			Name:      item.Name,
			Market:    stock.MarketKRX,
			Currency:  stock.CurrencyKRW,
			AssetType: assetType,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"query": query,
		"count": len(results),
	}).Debug("Naver search completed")

	return results, nil
}

// classifyItem keeps KRX-listed stocks and ETFs, drops indices and
// foreign listings the autocomplete also returns.
func classifyItem(item searchItem) (stock.AssetType, bool) {
	if item.TypeCode == "etf" {
		return stock.AssetETF, true
	}
	if item.TypeCode == "stock" && (item.TypeName == "코스피" || item.TypeName == "코스닥") {
		return stock.AssetStock, true
	}
	return "", false
}
