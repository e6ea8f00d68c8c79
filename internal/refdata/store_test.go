package refdata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
	"github.com/joonwoo/stockfolio/backend/pkg/config"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func writeFixture(t *testing.T, dir, name string, results []stock.SearchResult) {
	t.Helper()
	data, err := json.Marshal(results)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func testStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()

	writeFixture(t, dir, stockFile, []stock.SearchResult{
		{Symbol: "005930", Name: "삼성전자", Market: stock.MarketKRX, Currency: stock.CurrencyKRW, AssetType: stock.AssetStock},
		{Symbol: "000660", Name: "SK하이닉스", Market: stock.MarketKRX, Currency: stock.CurrencyKRW, AssetType: stock.AssetStock},
		{Symbol: "035420", Name: "NAVER", Market: stock.MarketKRX, Currency: stock.CurrencyKRW, AssetType: stock.AssetStock},
	})
	writeFixture(t, dir, etfFile, []stock.SearchResult{
		{Symbol: "069500", Name: "KODEX 200", Market: stock.MarketKRX, Currency: stock.CurrencyKRW, AssetType: stock.AssetETF},
		{Symbol: "360750", Name: "TIGER 미국S&P500", Market: stock.MarketKRX, Currency: stock.CurrencyKRW, AssetType: stock.AssetETF},
	})

	s, err := Load(dir, testLogger())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	return s
}

func TestLoadMissingFiles(t *testing.T) {
	s, err := Load(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("Load() on empty dir failed: %v", err)
	}

	if s.StockCount() != 0 || s.ETFCount() != 0 {
		t.Errorf("Expected empty store, got %d stocks, %d etfs", s.StockCount(), s.ETFCount())
	}
	if results := s.SearchStocks("삼성"); len(results) != 0 {
		t.Errorf("Expected no results from empty store, got %d", len(results))
	}
}

func TestSearchStocks(t *testing.T) {
	s := testStore(t)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"korean name", "삼성", 1},
		{"symbol substring", "0059", 1},
		{"case insensitive latin", "naver", 1},
		{"no match", "현대차", 0},
		{"empty query", "  ", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.SearchStocks(tt.query); len(got) != tt.want {
				t.Errorf("SearchStocks(%q) returned %d results, want %d", tt.query, len(got), tt.want)
			}
		})
	}
}

func TestSearchETFs(t *testing.T) {
	s := testStore(t)

	results := s.SearchETFs("kodex")
	if len(results) != 1 {
		t.Fatalf("SearchETFs(kodex) returned %d results, want 1", len(results))
	}
	if results[0].AssetType != stock.AssetETF {
		t.Errorf("Expected ETF asset type, got %s", results[0].AssetType)
	}
}

func TestSearchAllOrdersStocksFirst(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, stockFile, []stock.SearchResult{
		{Symbol: "005930", Name: "삼성전자", Market: stock.MarketKRX, Currency: stock.CurrencyKRW},
	})
	writeFixture(t, dir, etfFile, []stock.SearchResult{
		{Symbol: "069500", Name: "KODEX 삼성그룹", Market: stock.MarketKRX, Currency: stock.CurrencyKRW},
	})

	s, err := Load(dir, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	results := s.SearchAll("삼성")
	if len(results) != 2 {
		t.Fatalf("SearchAll returned %d results, want 2", len(results))
	}
	if results[0].Symbol != "005930" {
		t.Errorf("Expected stock hit first, got %s", results[0].Symbol)
	}
}

func TestBySymbolAndKoreanName(t *testing.T) {
	s := testStore(t)

	r, ok := s.BySymbol("005930")
	if !ok {
		t.Fatal("BySymbol(005930) not found")
	}
	if r.Name != "삼성전자" {
		t.Errorf("Got name %s, want 삼성전자", r.Name)
	}

	if name := s.KoreanName("069500"); name != "KODEX 200" {
		t.Errorf("KoreanName(069500) = %s, want KODEX 200", name)
	}
	if name := s.KoreanName("999999"); name != "" {
		t.Errorf("KoreanName for unknown symbol = %q, want empty", name)
	}
}
