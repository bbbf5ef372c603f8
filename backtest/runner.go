// Package backtest drives the simulation: one pass over the trading calendar,
// in order, with the fixed per-day sequence mark-to-market -> strategy ->
// rebalance -> record NAV.
package backtest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/rollsim/journal"
	"github.com/rustyeddy/rollsim/market"
	"github.com/rustyeddy/rollsim/pkg/id"
	"github.com/rustyeddy/rollsim/sim"
	"github.com/rustyeddy/rollsim/strategies"
)

// Runner drives an account forward using a snapshot source and a strategy.
// The account is exclusively owned by the run loop; independent runs over
// separate Runner/Account pairs may execute in parallel.
type Runner struct {
	Account  *sim.Account
	Strategy strategies.Strategy
	Source   market.SnapshotSource
	Calendar *market.Calendar
	Journal  journal.Journal // optional
	Log      *slog.Logger
}

// Run executes the backtest over trading dates in [start, end]. On a fatal
// condition (missing market data, no eligible contract, margin breach) the
// run stops and returns everything recorded up to the failing date together
// with the error; partial results are preserved for diagnosis, never
// discarded. Cancellation applies between days: a canceled context stops the
// run before the next date is processed.
func (r *Runner) Run(ctx context.Context, start, end time.Time) (Result, error) {
	if r.Account == nil {
		return Result{}, fmt.Errorf("backtest: Account is required")
	}
	if r.Strategy == nil {
		return Result{}, fmt.Errorf("backtest: Strategy is required")
	}
	if r.Source == nil {
		return Result{}, fmt.Errorf("backtest: Source is required")
	}
	if r.Calendar == nil {
		return Result{}, fmt.Errorf("backtest: Calendar is required")
	}
	if r.Journal == nil {
		r.Journal = journal.Nop{}
	}
	if r.Log == nil {
		r.Log = slog.Default()
	}

	dates := r.Calendar.Between(start, end)
	if len(dates) == 0 {
		return Result{}, fmt.Errorf("backtest: no trading dates in [%s, %s]",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	runID := id.New()
	r.Log.Info("backtest start",
		"run_id", runID, "strategy", r.Strategy.Name(),
		"start", dates[0].Format("2006-01-02"), "end", dates[len(dates)-1].Format("2006-01-02"),
		"days", len(dates))

	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return r.result(runID), fmt.Errorf("backtest canceled before %s: %w",
				date.Format("2006-01-02"), err)
		}
		if err := r.processDay(runID, date); err != nil {
			return r.result(runID), fmt.Errorf("backtest day %s: %w",
				date.Format("2006-01-02"), err)
		}
	}

	res := r.result(runID)
	r.Log.Info("backtest done",
		"run_id", runID, "final_nav", finalNAV(res.NAV), "trades", len(res.Trades))
	return res, nil
}

// processDay runs the five-step sequence for one trading date. The snapshot
// is fetched here and goes out of scope with the day; nothing retains it.
func (r *Runner) processDay(runID string, date time.Time) error {
	snap, err := r.Source.Snapshot(date)
	if err != nil {
		return err
	}

	if _, err := r.Account.MarkToMarket(snap); err != nil {
		return err
	}

	targets, err := r.Strategy.OnBar(snap, r.Account)
	if err != nil {
		return err
	}

	before := len(r.Account.Trades())
	if _, err := r.Account.RebalanceToTarget(map[string]int(targets), snap); err != nil {
		return err
	}
	for _, t := range r.Account.Trades()[before:] {
		if err := r.Journal.RecordTrade(runID, t); err != nil {
			return fmt.Errorf("journal trade: %w", err)
		}
	}

	if err := r.Account.RecordNAV(snap); err != nil {
		return err
	}
	return r.Journal.RecordNAV(runID, journal.NAVRecord{
		Date:           date,
		NAV:            r.Account.NAV(),
		Equity:         r.Account.Equity(),
		Cash:           r.Account.Cash,
		RequiredMargin: r.Account.RequiredMargin(snap),
	})
}

func (r *Runner) result(runID string) Result {
	nav := r.Account.NAVHistory()
	res := Result{
		RunID:       runID,
		NAV:         nav,
		Trades:      r.Account.Trades(),
		FinalEquity: r.Account.Equity(),
	}
	if len(nav) > 0 {
		res.Start = nav[0].Date
		res.End = nav[len(nav)-1].Date
	}
	return res
}

func finalNAV(nav []market.NAVPoint) float64 {
	if len(nav) == 0 {
		return 0
	}
	return nav[len(nav)-1].NAV
}
