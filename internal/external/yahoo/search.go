package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/joonwoo/stockfolio/backend/internal/market"
	"github.com/joonwoo/stockfolio/backend/internal/stock"
)

type searchQuote struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortname"`
	LongName  string `json:"longname"`
	Exchange  string `json:"exchange"`
	QuoteType string `json:"quoteType"`
}

type searchResponse struct {
	Quotes []searchQuote `json:"quotes"`
}

// Search queries the symbol search endpoint. Only equity results are
// kept; Yahoo's .KS/.KQ suffixes on Korean listings are stripped so the
// symbol matches the bare KRX ticker code.
func (c *Client) Search(ctx context.Context, query string) ([]stock.SearchResult, error) {
	fullURL := fmt.Sprintf("%s/v1/finance/search?q=%s&quotesCount=10&newsCount=0",
		c.baseURL, url.QueryEscape(query))

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("%w: search request failed: %v", stock.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: search status %d", stock.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var data searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", stock.ErrUpstreamUnavailable, err)
	}

	results := make([]stock.SearchResult, 0, len(data.Quotes))
	for _, q := range data.Quotes {
		if q.QuoteType != "EQUITY" {
			continue
		}

		symbol := q.Symbol
		currency := stock.CurrencyUSD
		if market.IsKoreanExchangeCode(q.Exchange) {
			symbol = market.StripKoreanSuffix(symbol)
			currency = stock.CurrencyKRW
		}

		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		if name == "" {
			name = q.Symbol
		}

		results = append(results, stock.SearchResult{
			Symbol:   symbol,
			Name:     name,
			Market:   market.FromExchangeCode(q.Exchange),
			Currency: currency,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"query": query,
		"count": len(results),
	}).Debug("Yahoo search completed")

	return results, nil
}
