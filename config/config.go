package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete backtest configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Backtest BacktestConfig `json:"backtest" yaml:"backtest"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	LogLevel string         `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// AccountConfig contains account initialization parameters.
type AccountConfig struct {
	InitialCapital  float64 `json:"initial_capital" yaml:"initial_capital"`
	MarginRate      float64 `json:"margin_rate" yaml:"margin_rate"`
	CommissionRate  float64 `json:"commission_rate" yaml:"commission_rate"`
	MarginTolerance float64 `json:"margin_tolerance,omitempty" yaml:"margin_tolerance,omitempty"`
}

// StrategyConfig contains strategy parameters.
type StrategyConfig struct {
	Name                 string  `json:"name" yaml:"name"` // baseline-roll, basis-timing, smart-roll
	FutCode              string  `json:"fut_code" yaml:"fut_code"`
	Selection            string  `json:"selection" yaml:"selection"` // nearby, volume, oi
	RollDaysBeforeExpiry int     `json:"roll_days_before_expiry" yaml:"roll_days_before_expiry"`
	MinRollDays          int     `json:"min_roll_days,omitempty" yaml:"min_roll_days,omitempty"`
	TargetLeverage       float64 `json:"target_leverage" yaml:"target_leverage"`

	// Basis-timing parameters.
	BasisEntryThreshold float64 `json:"basis_entry_threshold,omitempty" yaml:"basis_entry_threshold,omitempty"`
	BasisExitThreshold  float64 `json:"basis_exit_threshold,omitempty" yaml:"basis_exit_threshold,omitempty"`
	LookbackWindow      int     `json:"lookback_window,omitempty" yaml:"lookback_window,omitempty"`

	// Smart-roll parameter: volume or oi.
	RollCriteria string `json:"roll_criteria,omitempty" yaml:"roll_criteria,omitempty"`
}

// BacktestConfig contains run parameters.
type BacktestConfig struct {
	Start              string `json:"start" yaml:"start"` // 2006-01-02
	End                string `json:"end" yaml:"end"`
	TradingDaysPerYear int    `json:"trading_days_per_year,omitempty" yaml:"trading_days_per_year,omitempty"`
}

// DataConfig points at the CSV dataset (plain, .gz, .xz, or a .zip bundle).
type DataConfig struct {
	IndexFile     string `json:"index_file" yaml:"index_file"`
	ContractsFile string `json:"contracts_file" yaml:"contracts_file"`
	BarsFile      string `json:"bars_file" yaml:"bars_file"`
	Bundle        string `json:"bundle,omitempty" yaml:"bundle,omitempty"` // zip containing the three files
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	NAVFile    string `json:"nav_file,omitempty" yaml:"nav_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

const dateLayout = "2006-01-02"

// StartDate parses the configured start date.
func (c *BacktestConfig) StartDate() (time.Time, error) {
	return time.ParseInLocation(dateLayout, c.Start, time.UTC)
}

// EndDate parses the configured end date.
func (c *BacktestConfig) EndDate() (time.Time, error) {
	return time.ParseInLocation(dateLayout, c.End, time.UTC)
}

// LoadFromFile loads configuration from a file (YAML or JSON based on content).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Account.InitialCapital <= 0 {
		return fmt.Errorf("account.initial_capital must be positive")
	}
	if c.Account.MarginRate <= 0 || c.Account.MarginRate >= 1 {
		return fmt.Errorf("account.margin_rate must be in (0, 1)")
	}
	if c.Account.CommissionRate < 0 {
		return fmt.Errorf("account.commission_rate must not be negative")
	}

	switch c.Strategy.Name {
	case "baseline-roll", "basis-timing", "smart-roll":
	default:
		return fmt.Errorf("unknown strategy: %q", c.Strategy.Name)
	}
	if c.Strategy.FutCode == "" {
		return fmt.Errorf("strategy.fut_code is required")
	}
	switch c.Strategy.Selection {
	case "nearby", "volume", "oi":
	default:
		return fmt.Errorf("strategy.selection must be nearby, volume or oi")
	}
	if c.Strategy.RollDaysBeforeExpiry < 0 {
		return fmt.Errorf("strategy.roll_days_before_expiry must not be negative")
	}
	if c.Strategy.TargetLeverage <= 0 {
		return fmt.Errorf("strategy.target_leverage must be positive")
	}
	if c.Strategy.Name == "basis-timing" && c.Strategy.LookbackWindow <= 0 {
		return fmt.Errorf("strategy.lookback_window must be positive for basis-timing")
	}
	if c.Strategy.Name == "smart-roll" {
		switch c.Strategy.RollCriteria {
		case "volume", "oi":
		default:
			return fmt.Errorf("strategy.roll_criteria must be volume or oi for smart-roll")
		}
	}

	if _, err := c.Backtest.StartDate(); err != nil {
		return fmt.Errorf("backtest.start: %w", err)
	}
	end, err := c.Backtest.EndDate()
	if err != nil {
		return fmt.Errorf("backtest.end: %w", err)
	}
	start, _ := c.Backtest.StartDate()
	if end.Before(start) {
		return fmt.Errorf("backtest.end must not precede backtest.start")
	}
	if c.Backtest.TradingDaysPerYear <= 0 {
		return fmt.Errorf("backtest.trading_days_per_year must be positive")
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.NAVFile == "" {
			return fmt.Errorf("journal trades_file and nav_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be none, csv or sqlite")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			InitialCapital: 10_000_000,
			MarginRate:     0.12,
			CommissionRate: 0.00023,
		},
		Strategy: StrategyConfig{
			Name:                 "baseline-roll",
			FutCode:              "IC",
			Selection:            "nearby",
			RollDaysBeforeExpiry: 2,
			MinRollDays:          5,
			TargetLeverage:       1.0,
			BasisEntryThreshold:  -0.02,
			BasisExitThreshold:   0.0,
			LookbackWindow:       120,
			RollCriteria:         "volume",
		},
		Backtest: BacktestConfig{
			Start:              "2020-01-02",
			End:                "2023-12-29",
			TradingDaysPerYear: 244,
		},
		Journal: JournalConfig{
			Type: "none",
		},
		LogLevel: "info",
	}
}
