// Package journal persists backtest output: the append-only trade log and the
// daily NAV path, keyed by run ID so multiple parameter sets can share one
// store.
package journal

import (
	"time"

	"github.com/rustyeddy/rollsim/sim"
)

// NAVRecord is one daily equity observation of a run.
type NAVRecord struct {
	Date           time.Time
	NAV            float64 // equity / initial capital
	Equity         float64
	Cash           float64
	RequiredMargin float64
}

type Journal interface {
	RecordTrade(runID string, t sim.TradeRecord) error
	RecordNAV(runID string, rec NAVRecord) error
	Close() error
}

// Nop discards everything. Used when journaling is disabled.
type Nop struct{}

func (Nop) RecordTrade(string, sim.TradeRecord) error { return nil }
func (Nop) RecordNAV(string, NAVRecord) error         { return nil }
func (Nop) Close() error                              { return nil }
