package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
	"github.com/joonwoo/stockfolio/backend/pkg/config"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

type fakeRemote struct {
	results []stock.SearchResult
	err     error
	calls   int
}

func (f *fakeRemote) Search(ctx context.Context, query string) ([]stock.SearchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeLocal struct {
	all  []stock.SearchResult
	etfs []stock.SearchResult
}

func (f *fakeLocal) SearchAll(query string) []stock.SearchResult  { return f.all }
func (f *fakeLocal) SearchETFs(query string) []stock.SearchResult { return f.etfs }

func krxResult(symbol, name string) stock.SearchResult {
	return stock.SearchResult{
		Symbol:   symbol,
		Name:     name,
		Market:   stock.MarketKRX,
		Currency: stock.CurrencyKRW,
	}
}

func TestSearchHangulUsesKoreanSource(t *testing.T) {
	korean := &fakeRemote{results: []stock.SearchResult{krxResult("005930", "삼성전자")}}
	global := &fakeRemote{}
	local := &fakeLocal{all: []stock.SearchResult{krxResult("000660", "SK하이닉스")}}

	r := NewResolver(korean, global, local, testLogger())

	results, err := r.Search(context.Background(), "삼성")
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(results) != 1 || results[0].Symbol != "005930" {
		t.Errorf("results = %+v, want the Korean source answer", results)
	}
	if global.calls != 0 {
		t.Errorf("Global source called %d times for Hangul query, want 0", global.calls)
	}
}

func TestSearchHangulFallsBackToLocalOnFailure(t *testing.T) {
	korean := &fakeRemote{err: stock.ErrUpstreamUnavailable}
	local := &fakeLocal{all: []stock.SearchResult{krxResult("005930", "삼성전자")}}

	r := NewResolver(korean, &fakeRemote{}, local, testLogger())

	results, err := r.Search(context.Background(), "삼성")
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(results) != 1 || results[0].Name != "삼성전자" {
		t.Errorf("results = %+v, want local fallback", results)
	}
}

func TestSearchHangulFallsBackToLocalOnEmpty(t *testing.T) {
	korean := &fakeRemote{results: []stock.SearchResult{}}
	local := &fakeLocal{all: []stock.SearchResult{krxResult("005930", "삼성전자")}}

	r := NewResolver(korean, &fakeRemote{}, local, testLogger())

	results, _ := r.Search(context.Background(), "삼성")
	if len(results) != 1 {
		t.Errorf("results = %+v, want local fallback on empty remote answer", results)
	}
}

func TestSearchDigitQueryPrefersLocalReference(t *testing.T) {
	local := &fakeLocal{all: []stock.SearchResult{krxResult("005930", "삼성전자")}}
	global := &fakeRemote{results: []stock.SearchResult{krxResult("005930", "remote")}}

	r := NewResolver(&fakeRemote{}, global, local, testLogger())

	results, err := r.Search(context.Background(), "005930")
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(results) != 1 || results[0].Name != "삼성전자" {
		t.Errorf("results = %+v, want local reference hit", results)
	}
	if global.calls != 0 {
		t.Errorf("Global source called for locally-resolvable code, calls = %d", global.calls)
	}
}

func TestSearchDigitQueryFallsThroughWhenLocalEmpty(t *testing.T) {
	global := &fakeRemote{results: []stock.SearchResult{{Symbol: "123456", Name: "Unknown", Market: stock.MarketNYSE, Currency: stock.CurrencyUSD}}}

	r := NewResolver(&fakeRemote{}, global, &fakeLocal{}, testLogger())

	results, _ := r.Search(context.Background(), "123456")
	if len(results) != 1 || results[0].Symbol != "123456" {
		t.Errorf("results = %+v, want global fallthrough", results)
	}
	if global.calls != 1 {
		t.Errorf("Global calls = %d, want 1", global.calls)
	}
}

func TestSearchLatinMergesETFsFirst(t *testing.T) {
	etf := krxResult("069500", "KODEX 200")
	etf.AssetType = stock.AssetETF
	global := &fakeRemote{results: []stock.SearchResult{
		{Symbol: "AAPL", Name: "Apple Inc.", Market: stock.MarketNASDAQ, Currency: stock.CurrencyUSD},
	}}

	r := NewResolver(&fakeRemote{}, global, &fakeLocal{etfs: []stock.SearchResult{etf}}, testLogger())

	results, err := r.Search(context.Background(), "KODEX")
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Symbol != "069500" || results[1].Symbol != "AAPL" {
		t.Errorf("merge order = [%s %s], want ETF first", results[0].Symbol, results[1].Symbol)
	}
}

func TestSearchLatinSurvivesGlobalFailure(t *testing.T) {
	etf := krxResult("069500", "KODEX 200")
	global := &fakeRemote{err: stock.ErrUpstreamUnavailable}

	r := NewResolver(&fakeRemote{}, global, &fakeLocal{etfs: []stock.SearchResult{etf}}, testLogger())

	results, err := r.Search(context.Background(), "KODEX")
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(results) != 1 || results[0].Symbol != "069500" {
		t.Errorf("results = %+v, want local ETF side alone", results)
	}
}

func TestSearchLatinErrorWhenRemoteFailsAndLocalEmpty(t *testing.T) {
	global := &fakeRemote{err: stock.ErrUpstreamUnavailable}

	r := NewResolver(&fakeRemote{}, global, &fakeLocal{}, testLogger())

	results, err := r.Search(context.Background(), "AAPL")
	if !errors.Is(err, stock.ErrNoSearchResults) {
		t.Fatalf("err = %v, want ErrNoSearchResults", err)
	}
	if !errors.Is(err, stock.ErrUpstreamUnavailable) {
		t.Errorf("err = %v, want the transport cause reachable via Unwrap", err)
	}
	if results != nil {
		t.Errorf("results = %+v, want nil alongside the error", results)
	}
}

func TestSearchLatinEmptyAnswerIsNotAnError(t *testing.T) {
	r := NewResolver(&fakeRemote{}, &fakeRemote{}, &fakeLocal{}, testLogger())

	results, err := r.Search(context.Background(), "ZZZZ")
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %+v, want empty no-match answer", results)
	}
}

func TestSearchTruncatesToTen(t *testing.T) {
	var many []stock.SearchResult
	for i := 0; i < 8; i++ {
		many = append(many, stock.SearchResult{Symbol: fmt.Sprintf("SYM%d", i), Market: stock.MarketNYSE, Currency: stock.CurrencyUSD})
	}
	var etfs []stock.SearchResult
	for i := 0; i < 5; i++ {
		etfs = append(etfs, krxResult(fmt.Sprintf("06950%d", i), "KODEX"))
	}

	r := NewResolver(&fakeRemote{}, &fakeRemote{results: many}, &fakeLocal{etfs: etfs}, testLogger())

	results, _ := r.Search(context.Background(), "KODEX")
	if len(results) != 10 {
		t.Errorf("len(results) = %d, want 10", len(results))
	}
	// 앞쪽 5개는 ETF
	for i := 0; i < 5; i++ {
		if results[i].Name != "KODEX" {
			t.Errorf("results[%d] = %+v, want ETF entry", i, results[i])
		}
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	global := &fakeRemote{}
	r := NewResolver(&fakeRemote{}, global, &fakeLocal{}, testLogger())

	results, err := r.Search(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %+v, want empty", results)
	}
	if global.calls != 0 {
		t.Errorf("Sources consulted for blank query")
	}
}

func TestContainsHangul(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"삼성전자", true},
		{"ㅅㅅ", true},  // 초성 검색
		{"ㅏ", true},
		{"AAPL", false},
		{"005930", false},
		{"Samsung전자", true},
	}

	for _, tt := range tests {
		if got := containsHangul(tt.query); got != tt.want {
			t.Errorf("containsHangul(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestIsTickerCode(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"005930", true},
		{"5930", true},
		{"1", true},
		{"0059301", false}, // 7자리
		{"00593a", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isTickerCode(tt.query); got != tt.want {
			t.Errorf("isTickerCode(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}
