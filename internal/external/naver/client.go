package naver

import (
	"strconv"
	"strings"

	"github.com/joonwoo/stockfolio/backend/pkg/httputil"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

// Client handles communication with Naver Finance
// ⭐ SSOT: Naver Finance API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger

	mobileBaseURL string // m.stock.naver.com: 종목 기본 시세
	searchBaseURL string // ac.stock.naver.com: 자동완성 검색
}

// NewClient creates a new Naver Finance client
func NewClient(httpClient *httputil.Client, log *logger.Logger, mobileBaseURL, searchBaseURL string) *Client {
	if mobileBaseURL == "" {
		mobileBaseURL = "https://m.stock.naver.com"
	}
	if searchBaseURL == "" {
		searchBaseURL = "https://ac.stock.naver.com"
	}
	return &Client{
		httpClient:    httpClient,
		logger:        log,
		mobileBaseURL: mobileBaseURL,
		searchBaseURL: searchBaseURL,
	}
}

// parseKRW parses Naver's comma-grouped numeric strings ("4,180" → 4180).
// Absent or unparseable values normalize to 0.
func parseKRW(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}
