package backtest

import (
	"math"

	"github.com/rustyeddy/rollsim/market"
	"github.com/rustyeddy/rollsim/sim"
)

// Metrics summarizes a NAV series and its trade list.
type Metrics struct {
	TotalReturn  float64 `json:"total_return"`
	AnnualReturn float64 `json:"annual_return"`
	Volatility   float64 `json:"volatility"`
	Sharpe       float64 `json:"sharpe"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	WinRate      float64 `json:"win_rate"`
	Trades       int     `json:"trades"`
	Commission   float64 `json:"commission"`
	Turnover     float64 `json:"turnover"`
}

// Analyze computes performance metrics from a result. tradingDays is the
// annualization factor (trading days per year); values <= 0 default to 244.
// Returns are computed from the NAV series, so a partial result yields
// metrics for the portion that ran.
func Analyze(res Result, tradingDays int) Metrics {
	if tradingDays <= 0 {
		tradingDays = 244
	}
	var m Metrics
	m.Trades = len(res.Trades)

	var wins, closers int
	for _, t := range res.Trades {
		m.Commission += t.Commission
		m.Turnover += t.Amount
		if t.RealizedPL != 0 || t.Reason == sim.ReasonClose {
			closers++
			if t.RealizedPL > 0 {
				wins++
			}
		}
	}
	if closers > 0 {
		m.WinRate = float64(wins) / float64(closers)
	}

	nav := res.NAV
	if len(nav) == 0 {
		return m
	}
	m.TotalReturn = nav[len(nav)-1].NAV - 1

	// Daily returns off the recorded NAV points, with an implicit 1.0 start.
	rets := make([]float64, 0, len(nav))
	prev := 1.0
	for _, p := range nav {
		if prev > 0 {
			rets = append(rets, p.NAV/prev-1)
		}
		prev = p.NAV
	}
	if len(rets) > 0 {
		mean := 0.0
		for _, r := range rets {
			mean += r
		}
		mean /= float64(len(rets))
		variance := 0.0
		for _, r := range rets {
			variance += (r - mean) * (r - mean)
		}
		if len(rets) > 1 {
			variance /= float64(len(rets) - 1)
		}
		sd := math.Sqrt(variance)
		m.Volatility = sd * math.Sqrt(float64(tradingDays))
		m.AnnualReturn = math.Pow(1+m.TotalReturn, float64(tradingDays)/float64(len(rets))) - 1
		if m.Volatility > 0 {
			m.Sharpe = m.AnnualReturn / m.Volatility
		}
	}

	peak := 1.0
	for _, p := range nav {
		if p.NAV > peak {
			peak = p.NAV
		}
		if dd := (peak - p.NAV) / peak; dd > m.MaxDrawdown {
			m.MaxDrawdown = dd
		}
	}
	return m
}

// ExcessReturn is the strategy's total return over a benchmark NAV series,
// both normalized to 1.0 at their start. Returns zero when either side is
// empty.
func ExcessReturn(res Result, bench []market.NAVPoint) float64 {
	if len(res.NAV) == 0 || len(bench) == 0 {
		return 0
	}
	return (res.NAV[len(res.NAV)-1].NAV - 1) - (bench[len(bench)-1].NAV - 1)
}
