package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "종목 검색",
	Long: `이름 또는 심볼로 종목을 검색합니다. 쿼리의 문자 구성에 따라
네이버 자동완성, 로컬 참조 데이터, Yahoo 검색을 조합합니다.

Example:
  go run ./cmd/stockfolio search 삼성전자
  go run ./cmd/stockfolio search 005930
  go run ./cmd/stockfolio search apple`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	query := strings.Join(args, " ")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results, err := a.searches.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search %q: %w", query, err)
	}

	if len(results) == 0 {
		fmt.Println("검색 결과 없음")
		return nil
	}

	for _, r := range results {
		tag := ""
		if r.AssetType != "" {
			tag = fmt.Sprintf(" [%s]", r.AssetType)
		}
		fmt.Printf("  %-10s %-7s %s%s\n", r.Symbol, r.Market, r.Name, tag)
	}
	return nil
}
