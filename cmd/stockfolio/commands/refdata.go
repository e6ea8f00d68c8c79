package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joonwoo/stockfolio/backend/internal/refdata"
)

// refdataCmd represents the refdata command
var refdataCmd = &cobra.Command{
	Use:   "refdata",
	Short: "국내 종목/ETF 참조 데이터 다운로드",
	Long: `KIND에서 코스피/코스닥 상장 목록을, 네이버 금융에서 ETF 목록을
내려받아 REFDATA_DIR에 kr-stocks.json / kr-etfs.json으로 저장합니다.

Example:
  go run ./cmd/stockfolio refdata`,
	RunE: runRefData,
}

func init() {
	rootCmd.AddCommand(refdataCmd)
}

func runRefData(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	downloader := refdata.NewDownloader(a.http, a.log, a.cfg.Naver.FinanceBaseURL, a.cfg.RefData.Dir)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := downloader.Run(ctx); err != nil {
		return fmt.Errorf("refdata download: %w", err)
	}

	store, err := refdata.Load(a.cfg.RefData.Dir, a.log)
	if err != nil {
		return err
	}
	fmt.Printf("✅ 저장 완료: 종목 %d개, ETF %d개 (%s)\n",
		store.StockCount(), store.ETFCount(), a.cfg.RefData.Dir)
	return nil
}
