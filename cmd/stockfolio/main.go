package main

import (
	"os"

	"github.com/joonwoo/stockfolio/backend/cmd/stockfolio/commands"
)

// main is the entry point for the Stockfolio CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/stockfolio [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
