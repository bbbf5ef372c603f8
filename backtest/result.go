package backtest

import (
	"time"

	"github.com/rustyeddy/rollsim/market"
	"github.com/rustyeddy/rollsim/sim"
)

// Result holds whatever the run produced, complete or not. A failed run
// carries the NAV points and trades recorded before the failing date.
type Result struct {
	RunID       string            `json:"run_id"`
	Start       time.Time         `json:"start"`
	End         time.Time         `json:"end"`
	NAV         []market.NAVPoint `json:"nav"`
	Trades      []sim.TradeRecord `json:"trades"`
	FinalEquity float64           `json:"final_equity"`
}
