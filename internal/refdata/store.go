package refdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

const (
	stockFile = "kr-stocks.json"
	etfFile   = "kr-etfs.json"

	// maxResults caps search output to keep autocomplete payloads small
	maxResults = 10
)

// Store holds the local Korean stock/ETF reference lists, loaded once
// and immutable for the process lifetime.
// ⭐ SSOT: 로컬 종목 레퍼런스 조회는 이 스토어에서만
type Store struct {
	stocks []stock.SearchResult
	etfs   []stock.SearchResult

	bySymbol map[string]stock.SearchResult
}

// Load reads the reference JSON files from dir. Missing files are not an
// error: the store degrades to empty lists and remote search carries the
// load, same as before `stockfolio refdata` has been run.
func Load(dir string, log *logger.Logger) (*Store, error) {
	s := &Store{bySymbol: make(map[string]stock.SearchResult)}

	stocks, err := loadFile(filepath.Join(dir, stockFile))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", stockFile, err)
	}
	etfs, err := loadFile(filepath.Join(dir, etfFile))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", etfFile, err)
	}

	s.stocks = stocks
	s.etfs = etfs
	for _, r := range stocks {
		s.bySymbol[r.Symbol] = r
	}
	for _, r := range etfs {
		if _, exists := s.bySymbol[r.Symbol]; !exists {
			s.bySymbol[r.Symbol] = r
		}
	}

	log.WithFields(map[string]interface{}{
		"stocks": len(stocks),
		"etfs":   len(etfs),
	}).Info("Loaded local reference data")

	return s, nil
}

func loadFile(path string) ([]stock.SearchResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var results []stock.SearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	return results, nil
}

// SearchStocks returns up to 10 stocks whose name or symbol contains the
// query, case-insensitive.
func (s *Store) SearchStocks(query string) []stock.SearchResult {
	return searchList(s.stocks, query)
}

// SearchETFs returns up to 10 ETFs matching the query.
func (s *Store) SearchETFs(query string) []stock.SearchResult {
	return searchList(s.etfs, query)
}

// SearchAll merges stock hits first, then ETF hits, truncated to 10.
func (s *Store) SearchAll(query string) []stock.SearchResult {
	merged := append(searchList(s.stocks, query), searchList(s.etfs, query)...)
	if len(merged) > maxResults {
		merged = merged[:maxResults]
	}
	return merged
}

// BySymbol looks up a reference entry by its exact ticker code.
func (s *Store) BySymbol(symbol string) (stock.SearchResult, bool) {
	r, ok := s.bySymbol[symbol]
	return r, ok
}

// KoreanName returns the local Korean display name for a ticker code, or
// "" when unknown. Used for display-name resolution in quote normalizers.
func (s *Store) KoreanName(symbol string) string {
	if r, ok := s.bySymbol[symbol]; ok {
		return r.Name
	}
	return ""
}

// StockCount returns the number of loaded stock entries.
func (s *Store) StockCount() int { return len(s.stocks) }

// ETFCount returns the number of loaded ETF entries.
func (s *Store) ETFCount() int { return len(s.etfs) }

func searchList(list []stock.SearchResult, query string) []stock.SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || len(list) == 0 {
		return nil
	}

	var results []stock.SearchResult
	for _, r := range list {
		if strings.Contains(strings.ToLower(r.Name), q) || strings.Contains(r.Symbol, q) {
			results = append(results, r)
			if len(results) == maxResults {
				break
			}
		}
	}
	return results
}
