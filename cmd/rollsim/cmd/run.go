package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/rollsim/backtest"
	"github.com/rustyeddy/rollsim/config"
	"github.com/rustyeddy/rollsim/data"
	"github.com/rustyeddy/rollsim/journal"
	"github.com/rustyeddy/rollsim/market"
	"github.com/rustyeddy/rollsim/sim"
	"github.com/rustyeddy/rollsim/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest from a configuration file",
	Long: `Run loads market data, replays the configured window day by day and
prints a performance summary.

Example:
  rollsim run -c backtest.yaml --strategy basis-timing`,
	RunE: runRun,
}

var (
	runConfigPath string
	runStrategy   string
	runStart      string
	runEnd        string
	runTrades     bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to config file (required)")
	runCmd.Flags().StringVarP(&runStrategy, "strategy", "s", "", "override configured strategy name")
	runCmd.Flags().StringVar(&runStart, "start", "", "override backtest start (2006-01-02)")
	runCmd.Flags().StringVar(&runEnd, "end", "", "override backtest end (2006-01-02)")
	runCmd.Flags().BoolVar(&runTrades, "trades", false, "print the full trade list")

	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if runStrategy != "" {
		cfg.Strategy.Name = runStrategy
	}
	if runStart != "" {
		cfg.Backtest.Start = runStart
	}
	if runEnd != "" {
		cfg.Backtest.End = runEnd
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
	cal := market.NewCalendar(chain.Index.TradingDates())

	jrnl, err := journalFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jrnl.Close()

	strat, err := strategies.FromConfig(cfg, chain, cal, log)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	acct := sim.NewAccount(sim.AccountParams{
		InitialCapital:  cfg.Account.InitialCapital,
		MarginRate:      cfg.Account.MarginRate,
		CommissionRate:  cfg.Account.CommissionRate,
		MarginTolerance: cfg.Account.MarginTolerance,
	}, chain, log)

	start, _ := cfg.Backtest.StartDate()
	end, _ := cfg.Backtest.EndDate()

	runner := &backtest.Runner{
		Account:  acct,
		Strategy: strat,
		Source:   data.NewChainSource(chain),
		Calendar: cal,
		Journal:  jrnl,
		Log:      log,
	}

	fmt.Printf("Running %s on %s, %s to %s\n\n",
		strat.Name(), cfg.Strategy.FutCode, cfg.Backtest.Start, cfg.Backtest.End)

	res, runErr := runner.Run(context.Background(), start, end)
	metrics := backtest.Analyze(res, cfg.Backtest.TradingDaysPerYear)
	bench := chain.Index.NAVSeries(start, end)
	printSummary(res, metrics, backtest.ExcessReturn(res, bench))
	if runTrades {
		printTrades(res.Trades)
	}

	if runErr != nil {
		return fmt.Errorf("backtest stopped early: %w", runErr)
	}
	return nil
}

func printSummary(res backtest.Result, m backtest.Metrics, excess float64) {
	fmt.Printf("Run %s (%d trading days)\n", res.RunID, len(res.NAV))

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Metric", "Value")
	table.Append("Total Return", fmt.Sprintf("%.2f%%", m.TotalReturn*100))
	table.Append("Excess vs Index", fmt.Sprintf("%.2f%%", excess*100))
	table.Append("Annual Return", fmt.Sprintf("%.2f%%", m.AnnualReturn*100))
	table.Append("Volatility", fmt.Sprintf("%.2f%%", m.Volatility*100))
	table.Append("Sharpe", fmt.Sprintf("%.2f", m.Sharpe))
	table.Append("Max Drawdown", fmt.Sprintf("%.2f%%", m.MaxDrawdown*100))
	table.Append("Win Rate", fmt.Sprintf("%.1f%%", m.WinRate*100))
	table.Append("Trades", fmt.Sprintf("%d", m.Trades))
	table.Append("Commission", fmt.Sprintf("%.2f", m.Commission))
	table.Append("Turnover", fmt.Sprintf("%.2f", m.Turnover))
	table.Append("Final Equity", fmt.Sprintf("%.2f", res.FinalEquity))
	table.Render()
}

func printTrades(trades []sim.TradeRecord) {
	fmt.Println()
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Date", "Contract", "Volume", "Price", "Commission", "Realized P&L", "Reason")
	for _, t := range trades {
		table.Append(
			t.Date.Format("2006-01-02"),
			t.Contract,
			fmt.Sprintf("%d", t.Volume),
			fmt.Sprintf("%.1f", t.Price),
			fmt.Sprintf("%.2f", t.Commission),
			fmt.Sprintf("%.2f", t.RealizedPL),
			t.Reason,
		)
	}
	table.Render()
}

// loadChain resolves the data files, extracting a bundle first if one is
// configured, then loads the full chain.
func loadChain(cfg *config.Config) (*market.Chain, error) {
	indexFile := cfg.Data.IndexFile
	contractsFile := cfg.Data.ContractsFile
	barsFile := cfg.Data.BarsFile

	if cfg.Data.Bundle != "" {
		dir, err := data.ExtractBundle(cfg.Data.Bundle, bundleDir(cfg.Data.Bundle))
		if err != nil {
			return nil, err
		}
		indexFile = data.BundlePath(dir, indexFile)
		contractsFile = data.BundlePath(dir, contractsFile)
		barsFile = data.BundlePath(dir, barsFile)
	}
	return data.LoadChain(cfg.Strategy.FutCode, indexFile, contractsFile, barsFile)
}

func bundleDir(bundle string) string {
	return bundle + ".extracted"
}

func journalFromConfig(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "", "none":
		return journal.Nop{}, nil
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.NAVFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
	}
}
