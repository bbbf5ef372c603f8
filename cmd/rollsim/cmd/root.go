package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rollsim",
	Short: "A daily-rebalanced index futures rolling backtester",
	Long: `Rollsim simulates holding a continuously rolled index futures position
with daily settlement accounting.

It provides tools for:
  - Backtesting roll strategies against daily futures data
  - Basis-timed leverage scaling with configurable thresholds
  - Liquidity-driven contract rolling on volume or open interest
  - Journaling trades and NAV curves to CSV or SQLite
  - Serving backtests over an HTTP API`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the process logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "", "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
