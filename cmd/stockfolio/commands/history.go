package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joonwoo/stockfolio/backend/internal/market"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [symbol]",
	Short: "과거 시세 조회",
	Long: `한 종목의 OHLCV 히스토리를 조회합니다. interval을 생략하면
range에서 자동 유도됩니다 (예: 1y → 주봉).

Example:
  go run ./cmd/stockfolio history 005930 --range 1mo
  go run ./cmd/stockfolio history AAPL --range 1y --interval 1d`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

var (
	historyRange    string
	historyInterval string
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyRange, "range", "1mo", "조회 범위 (1d|5d|1mo|3mo|6mo|1y|2y|5y|10y|max)")
	historyCmd.Flags().StringVar(&historyInterval, "interval", "", "봉 간격 (비면 범위에서 유도)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	symbol := strings.ToUpper(args[0])

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	points, err := a.quotes.GetHistory(ctx, symbol, market.Detect(symbol), historyRange, historyInterval)
	if err != nil {
		return fmt.Errorf("history %s: %w", symbol, err)
	}

	if len(points) == 0 {
		fmt.Println("데이터 없음")
		return nil
	}

	fmt.Printf("%s (%s, %d bars)\n", symbol, historyRange, len(points))
	for _, p := range points {
		fmt.Printf("  %s  O %10.2f  H %10.2f  L %10.2f  C %10.2f  V %12.0f\n",
			p.Date.Format("2006-01-02"), p.Open, p.High, p.Low, p.Close, p.Volume)
	}
	return nil
}
