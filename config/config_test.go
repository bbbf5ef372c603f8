package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestSaveLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backtest.yaml")

	cfg := Default()
	cfg.Strategy.Name = "basis-timing"
	cfg.Strategy.TargetLeverage = 0.8
	cfg.Journal.Type = "sqlite"
	cfg.Journal.DBPath = "runs.sqlite"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "basis-timing", loaded.Strategy.Name)
	assert.Equal(t, 0.8, loaded.Strategy.TargetLeverage)
	assert.Equal(t, "sqlite", loaded.Journal.Type)
}

func TestLoadJSONFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backtest.json")
	body := `{"strategy": {"name": "smart-roll", "fut_code": "IF", "selection": "volume",
		"roll_days_before_expiry": 3, "target_leverage": 1.0, "roll_criteria": "oi"}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "smart-roll", cfg.Strategy.Name)
	assert.Equal(t, "IF", cfg.Strategy.FutCode)
	assert.Equal(t, "oi", cfg.Strategy.RollCriteria)
	// Unset sections keep defaults.
	assert.Equal(t, 10_000_000.0, cfg.Account.InitialCapital)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero capital", func(c *Config) { c.Account.InitialCapital = 0 }, "initial_capital"},
		{"margin rate one", func(c *Config) { c.Account.MarginRate = 1 }, "margin_rate"},
		{"unknown strategy", func(c *Config) { c.Strategy.Name = "martingale" }, "unknown strategy"},
		{"bad selection", func(c *Config) { c.Strategy.Selection = "random" }, "selection"},
		{"zero leverage", func(c *Config) { c.Strategy.TargetLeverage = 0 }, "target_leverage"},
		{"reversed window", func(c *Config) { c.Backtest.Start, c.Backtest.End = c.Backtest.End, c.Backtest.Start }, "must not precede"},
		{"bad date", func(c *Config) { c.Backtest.Start = "01/02/2020" }, "backtest.start"},
		{"csv without paths", func(c *Config) { c.Journal.Type = "csv" }, "trades_file"},
		{"sqlite without path", func(c *Config) { c.Journal.Type = "sqlite" }, "db_path"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestBasisTimingRequiresLookback(t *testing.T) {
	cfg := Default()
	cfg.Strategy.Name = "basis-timing"
	cfg.Strategy.LookbackWindow = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lookback_window")
}

func TestBacktestDates(t *testing.T) {
	cfg := Default()
	start, err := cfg.Backtest.StartDate()
	require.NoError(t, err)
	assert.Equal(t, 2020, start.Year())
	end, err := cfg.Backtest.EndDate()
	require.NoError(t, err)
	assert.True(t, end.After(start))
}
