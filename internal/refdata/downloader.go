package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
	"github.com/joonwoo/stockfolio/backend/pkg/httputil"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

const (
	// KIND 기업공시채널: 인증 불필요, 무료 공개 데이터
	kindListURL = "https://kind.krx.co.kr/corpgeneral/corpList.do?method=download&searchType=13&marketType=%s"

	naverETFListPath = "/api/sise/etfItemList.naver"
)

// Downloader refreshes the local Korean reference data files from
// KIND (stocks) and Naver Finance (ETFs).
// ⭐ SSOT: 레퍼런스 데이터 다운로드는 여기서만
type Downloader struct {
	httpClient     *httputil.Client
	logger         *logger.Logger
	financeBaseURL string
	dir            string
}

// NewDownloader creates a downloader writing into dir. financeBaseURL
// is the Naver Finance origin serving the ETF item list.
func NewDownloader(httpClient *httputil.Client, log *logger.Logger, financeBaseURL, dir string) *Downloader {
	if financeBaseURL == "" {
		financeBaseURL = "https://finance.naver.com"
	}
	return &Downloader{
		httpClient:     httpClient,
		logger:         log,
		financeBaseURL: financeBaseURL,
		dir:            dir,
	}
}

// Run downloads both datasets and writes kr-stocks.json / kr-etfs.json.
func (d *Downloader) Run(ctx context.Context) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("create refdata dir: %w", err)
	}

	stocks, err := d.DownloadStocks(ctx)
	if err != nil {
		return fmt.Errorf("download stocks: %w", err)
	}
	if err := d.writeJSON(stockFile, stocks); err != nil {
		return err
	}

	etfs, err := d.DownloadETFs(ctx)
	if err != nil {
		return fmt.Errorf("download etfs: %w", err)
	}
	if err := d.writeJSON(etfFile, etfs); err != nil {
		return err
	}

	d.logger.WithFields(map[string]interface{}{
		"stocks": len(stocks),
		"etfs":   len(etfs),
		"dir":    d.dir,
	}).Info("Reference data refreshed")

	return nil
}

// DownloadStocks fetches the full KOSPI+KOSDAQ listing from KIND.
// The endpoint returns an HTML table in EUC-KR despite the .do download
// path advertising Excel.
func (d *Downloader) DownloadStocks(ctx context.Context) ([]stock.SearchResult, error) {
	var all []stock.SearchResult

	for _, mkt := range []string{"stockMkt", "kosdaqMkt"} {
		rows, err := d.downloadMarket(ctx, mkt)
		if err != nil {
			return nil, fmt.Errorf("market %s: %w", mkt, err)
		}
		all = append(all, rows...)
	}

	return all, nil
}

func (d *Downloader) downloadMarket(ctx context.Context, marketType string) ([]stock.SearchResult, error) {
	url := fmt.Sprintf(kindListURL, marketType)

	resp, err := d.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// EUC-KR 인코딩 대응
	reader := transform.NewReader(resp.Body, korean.EUCKR.NewDecoder())
	return parseKindTable(reader)
}

// parseKindTable extracts ticker codes and names from the KIND HTML table.
// Column 0 is 회사명 (company name), column 1 is 종목코드 (ticker code).
func parseKindTable(r io.Reader) ([]stock.SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML failed: %w", err)
	}

	var results []stock.SearchResult
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return // Header or malformed row
		}

		name := strings.TrimSpace(cells.Eq(0).Text())
		code := strings.TrimSpace(cells.Eq(1).Text())
		if name == "" || code == "" {
			return
		}

		// KIND lists 6-digit codes; pad short historical codes
		for len(code) < 6 {
			code = "0" + code
		}

		results = append(results, stock.SearchResult{
			Symbol:    code,
			Name:      name,
			Market:    stock.MarketKRX,
			Currency:  stock.CurrencyKRW,
			AssetType: stock.AssetStock,
		})
	})

	return results, nil
}

// DownloadETFs fetches the domestic ETF list from Naver Finance.
func (d *Downloader) DownloadETFs(ctx context.Context) ([]stock.SearchResult, error) {
	resp, err := d.httpClient.Get(ctx, d.financeBaseURL+naverETFListPath)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(transform.NewReader(resp.Body, korean.EUCKR.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	return parseETFList(body), nil
}

// parseETFList pulls itemcode/itemname pairs out of the loosely shaped
// etfItemList payload. The wrapper keys have shifted between
// result.etfItemList and result.etfItemList.item historically, so the
// parse is path-based rather than schema-bound.
func parseETFList(body []byte) []stock.SearchResult {
	items := gjson.GetBytes(body, "result.etfItemList")
	if !items.Exists() {
		return nil
	}

	var results []stock.SearchResult
	items.ForEach(func(_, item gjson.Result) bool {
		code := item.Get("itemcode").String()
		name := item.Get("itemname").String()
		if code == "" || name == "" {
			return true
		}
		results = append(results, stock.SearchResult{
			Symbol:    code,
			Name:      name,
			Market:    stock.MarketKRX,
			Currency:  stock.CurrencyKRW,
			AssetType: stock.AssetETF,
		})
		return true
	})

	return results
}

func (d *Downloader) writeJSON(name string, results []stock.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	path := filepath.Join(d.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
