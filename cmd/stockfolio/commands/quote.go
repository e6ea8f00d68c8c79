package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joonwoo/stockfolio/backend/internal/market"
	"github.com/joonwoo/stockfolio/backend/internal/stock"
)

// quoteCmd represents the quote command
var quoteCmd = &cobra.Command{
	Use:   "quote [symbol]",
	Short: "종목 시세 조회",
	Long: `다중 소스 폴백 체인으로 한 종목의 시세를 조회합니다.

Example:
  go run ./cmd/stockfolio quote 005930
  go run ./cmd/stockfolio quote AAPL
  go run ./cmd/stockfolio quote 005930 --kis-app-key=... --kis-app-secret=...`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

var (
	quoteMarket    string
	quoteAppKey    string
	quoteAppSecret string
)

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().StringVar(&quoteMarket, "market", "", "시장 지정 (KRX|NYSE|NASDAQ, 기본: 심볼 형태로 판별)")
	quoteCmd.Flags().StringVar(&quoteAppKey, "kis-app-key", "", "KIS 앱 키 (증권사 소스 단독 사용)")
	quoteCmd.Flags().StringVar(&quoteAppSecret, "kis-app-secret", "", "KIS 앱 시크릿")
}

func runQuote(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	symbol := strings.ToUpper(args[0])

	mkt := stock.Market(strings.ToUpper(quoteMarket))
	if mkt == "" {
		mkt = market.Detect(symbol)
	}

	creds := a.kisCredentials(quoteAppKey, quoteAppSecret)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	q, err := a.quotes.GetQuote(ctx, symbol, mkt, creds)
	if err != nil {
		return fmt.Errorf("quote %s: %w", symbol, err)
	}

	fmt.Printf("%s (%s, %s)\n", q.Name, q.Symbol, q.Market)
	fmt.Printf("  현재가:    %s %s\n", formatPrice(q.CurrentPrice, q.Currency), q.Currency)
	fmt.Printf("  전일대비:  %+.2f (%+.2f%%)\n", q.Change, q.ChangePercent)
	fmt.Printf("  시/고/저:  %s / %s / %s\n",
		formatPrice(q.Open, q.Currency), formatPrice(q.High, q.Currency), formatPrice(q.Low, q.Currency))
	fmt.Printf("  52주:      %s ~ %s\n",
		formatPrice(q.Low52Week, q.Currency), formatPrice(q.High52Week, q.Currency))
	fmt.Printf("  거래량:    %.0f\n", q.Volume)
	fmt.Printf("  장 상태:   %s\n", q.MarketStatus)
	return nil
}

func formatPrice(v float64, cur stock.Currency) string {
	if cur == stock.CurrencyKRW {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
