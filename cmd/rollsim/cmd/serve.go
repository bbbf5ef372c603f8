package cmd

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/rollsim/api"
	"github.com/rustyeddy/rollsim/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve backtests over HTTP",
	Long: `Serve loads the configured data set once and exposes the backtester
as a JSON API.

Endpoints:
  GET  /healthz
  GET  /api/v1/strategies
  POST /api/v1/backtest

Example:
  rollsim serve -c backtest.yaml --addr :8080`,
	RunE: runServe,
}

var (
	serveConfigPath string
	serveAddr       string
	serveRelease    bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "path to config file (required)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().BoolVar(&serveRelease, "release", false, "run gin in release mode")

	serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(serveConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	chain, err := loadChain(cfg)
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	log.Info("data loaded",
		"fut_code", chain.FutCode, "contracts", chain.Len(),
		"index", chain.Index.Code, "days", len(chain.Index.TradingDates()))

	if serveRelease {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := api.NewServer(cfg, chain, log)

	fmt.Printf("Serving %s backtests on %s\n", chain.FutCode, serveAddr)
	return srv.Router().Run(serveAddr)
}
