package sim

import "time"

// Trade reasons recorded on every fill.
const (
	ReasonOpen      = "OPEN"      // first entry into the chain
	ReasonRoll      = "ROLL"      // close near contract / open far contract
	ReasonRebalance = "REBALANCE" // leverage-maintenance resize
	ReasonClose     = "CLOSE"     // flatten without replacement
)

// TradeRecord is an immutable log entry for a single fill. Records are
// append-only and never mutated after creation.
type TradeRecord struct {
	Date       time.Time
	Contract   string
	Volume     int     // signed fill, + buy, - sell
	Price      float64 // execution price (daily settle)
	Amount     float64 // |volume| * price * multiplier
	Commission float64
	RealizedPL float64 // realized by the closing portion of the fill
	Reason     string
}
