package api

import (
	"github.com/rustyeddy/rollsim/backtest"
	"github.com/rustyeddy/rollsim/config"
	"github.com/rustyeddy/rollsim/sim"
)

// BacktestRequest selects a strategy and window; zero-valued fields fall
// back to the server's base configuration.
type BacktestRequest struct {
	Strategy       string  `json:"strategy"`
	Start          string  `json:"start"`
	End            string  `json:"end"`
	InitialCapital float64 `json:"initial_capital"`
	TargetLeverage float64 `json:"target_leverage"`
	Selection      string  `json:"selection"`

	BasisEntryThreshold *float64 `json:"basis_entry_threshold,omitempty"`
	BasisExitThreshold  *float64 `json:"basis_exit_threshold,omitempty"`
	RollCriteria        string   `json:"roll_criteria,omitempty"`
}

// apply overlays the request onto a copy of the base configuration.
func (r *BacktestRequest) apply(base *config.Config) *config.Config {
	cfg := *base
	if r.Strategy != "" {
		cfg.Strategy.Name = r.Strategy
	}
	if r.Start != "" {
		cfg.Backtest.Start = r.Start
	}
	if r.End != "" {
		cfg.Backtest.End = r.End
	}
	if r.InitialCapital > 0 {
		cfg.Account.InitialCapital = r.InitialCapital
	}
	if r.TargetLeverage > 0 {
		cfg.Strategy.TargetLeverage = r.TargetLeverage
	}
	if r.Selection != "" {
		cfg.Strategy.Selection = r.Selection
	}
	if r.BasisEntryThreshold != nil {
		cfg.Strategy.BasisEntryThreshold = *r.BasisEntryThreshold
	}
	if r.BasisExitThreshold != nil {
		cfg.Strategy.BasisExitThreshold = *r.BasisExitThreshold
	}
	if r.RollCriteria != "" {
		cfg.Strategy.RollCriteria = r.RollCriteria
	}
	return &cfg
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type NAVPointPayload struct {
	Date string  `json:"date"`
	NAV  float64 `json:"nav"`
}

type ResultPayload struct {
	RunID       string            `json:"run_id"`
	NAV         []NAVPointPayload `json:"nav"`
	Trades      []sim.TradeRecord `json:"trades"`
	FinalEquity float64           `json:"final_equity"`
}

// BacktestResponse carries the run output. Error is set when the run stopped
// early; Result then holds everything recorded before the failure.
type BacktestResponse struct {
	Result  ResultPayload    `json:"result"`
	Metrics backtest.Metrics `json:"metrics"`
	Error   *ErrorDetail     `json:"error,omitempty"`
}
