package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stockfolio",
	Short: "Stockfolio - 국내외 주식 시세/포트폴리오 백엔드",
	Long: `Stockfolio backend CLI

KRX와 미국 시장 시세를 다중 소스 폴백 체인으로 조회하고,
포트폴리오 평가와 관심 종목 스트림을 제공합니다.

Usage:
  go run ./cmd/stockfolio [command]

Examples:
  go run ./cmd/stockfolio api
  go run ./cmd/stockfolio quote 005930
  go run ./cmd/stockfolio search 삼성전자
  go run ./cmd/stockfolio refdata`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
