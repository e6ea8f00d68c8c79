package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

const maxResults = 10

// KoreanSearchSource is the autocomplete endpoint for Korean-language
// queries (company names typed in Hangul).
type KoreanSearchSource interface {
	Search(ctx context.Context, query string) ([]stock.SearchResult, error)
}

// GlobalSearchSource is the general finance search endpoint for
// ticker/Latin queries.
type GlobalSearchSource interface {
	Search(ctx context.Context, query string) ([]stock.SearchResult, error)
}

// ReferenceSource is the local static lookup over the Korean stock and
// ETF reference lists.
type ReferenceSource interface {
	SearchAll(query string) []stock.SearchResult
	SearchETFs(query string) []stock.SearchResult
}

// Resolver dispatches a search query to the right source combination
// based on the query's script composition.
// ⭐ SSOT: 검색 쿼리 디스패치 규칙은 이 리졸버에서만
//
//   - 한글 포함: 네이버 자동완성 우선, 실패/빈 결과면 로컬 참조 데이터
//   - 1~6자리 숫자(국내 종목코드 형태): 로컬 참조 데이터 우선
//   - 그 외(영문 티커): Yahoo 검색과 로컬 ETF 검색을 동시에 조회해 병합
type Resolver struct {
	korean KoreanSearchSource
	global GlobalSearchSource
	local  ReferenceSource
	logger *logger.Logger
}

func NewResolver(korean KoreanSearchSource, global GlobalSearchSource, local ReferenceSource, log *logger.Logger) *Resolver {
	return &Resolver{
		korean: korean,
		global: global,
		local:  local,
		logger: log,
	}
}

// Search returns at most 10 results. An empty result is not an error
// as long as some source answered: callers render "no matches" rather
// than a failure state. The Latin path is the exception: when its sole
// remote source fails and the local fallback has nothing either, the
// transport failure surfaces as ErrNoSearchResults.
func (r *Resolver) Search(ctx context.Context, query string) ([]stock.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []stock.SearchResult{}, nil
	}

	switch {
	case containsHangul(query):
		return r.searchKorean(ctx, query), nil
	case isTickerCode(query):
		if results := r.local.SearchAll(query); len(results) > 0 {
			return truncate(results), nil
		}
		// 로컬에 없는 숫자 코드는 일반 검색으로 넘긴다
		return r.searchLatin(ctx, query)
	default:
		return r.searchLatin(ctx, query)
	}
}

// searchKorean tries the remote autocomplete first and falls back to
// the local reference lists on failure or an empty answer.
func (r *Resolver) searchKorean(ctx context.Context, query string) []stock.SearchResult {
	results, err := r.korean.Search(ctx, query)
	if err != nil {
		r.logger.WithError(err).WithField("query", query).Debug("Korean search source failed, using local reference")
	}
	if len(results) > 0 {
		return truncate(results)
	}
	return truncate(r.local.SearchAll(query))
}

// searchLatin queries the general source and the local ETF reference
// concurrently and merges once both settle. A failed remote side
// contributes nothing and never cancels the other; it only becomes the
// caller's error when the local side had nothing to offer either.
func (r *Resolver) searchLatin(ctx context.Context, query string) ([]stock.SearchResult, error) {
	var (
		wg        sync.WaitGroup
		globalRes []stock.SearchResult
		globalErr error
		etfRes    []stock.SearchResult
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		globalRes, globalErr = r.global.Search(ctx, query)
	}()
	go func() {
		defer wg.Done()
		etfRes = r.local.SearchETFs(query)
	}()
	wg.Wait()

	if globalErr != nil {
		r.logger.WithError(globalErr).WithField("query", query).Debug("Global search source failed")
		globalRes = nil
	}

	// ETF 결과를 앞에 둔다
	merged := make([]stock.SearchResult, 0, len(etfRes)+len(globalRes))
	merged = append(merged, etfRes...)
	merged = append(merged, globalRes...)

	if len(merged) == 0 && globalErr != nil {
		return nil, fmt.Errorf("%w: %q: %w", stock.ErrNoSearchResults, query, globalErr)
	}
	return truncate(merged), nil
}

// containsHangul reports whether the query holds any Hangul syllable
// or jamo rune.
func containsHangul(s string) bool {
	for _, r := range s {
		if (r >= '가' && r <= '힣') || (r >= 'ㄱ' && r <= 'ㅎ') || (r >= 'ㅏ' && r <= 'ㅣ') {
			return true
		}
	}
	return false
}

// isTickerCode reports whether the query is 1 to 6 ASCII digits, the
// shape of a Korean listing code.
func isTickerCode(s string) bool {
	if len(s) < 1 || len(s) > 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func truncate(results []stock.SearchResult) []stock.SearchResult {
	if results == nil {
		return []stock.SearchResult{}
	}
	if len(results) > maxResults {
		return results[:maxResults]
	}
	return results
}
