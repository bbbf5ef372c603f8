package sim

import (
	"fmt"
	"time"

	"github.com/rustyeddy/rollsim/market"
)

// Position is a mutable holding in one futures contract. Volume is signed
// (+long, -short) and never zero: a position rebalanced to zero volume is
// removed from the account, not retained.
type Position struct {
	Contract   *market.Contract
	Volume     int
	EntryPrice float64
	LastSettle float64
}

func NewPosition(c *market.Contract, volume int, entry float64) *Position {
	return &Position{
		Contract:   c,
		Volume:     volume,
		EntryPrice: entry,
		LastSettle: entry,
	}
}

func (p *Position) String() string {
	side := "LONG"
	if p.Volume < 0 {
		side = "SHORT"
	}
	return fmt.Sprintf("Position(%s %s %d @ %.2f)", p.Contract.Code, side, abs(p.Volume), p.LastSettle)
}

// MarkToMarket settles the position against today's settlement price and
// returns the daily P&L: (settle - lastSettle) * volume * multiplier.
// Call at most once per trade date. The first call on a freshly opened
// position yields zero P&L because lastSettle starts at the entry price.
func (p *Position) MarkToMarket(settle float64) float64 {
	if p.LastSettle == 0 {
		p.LastSettle = p.EntryPrice
	}
	pnl := (settle - p.LastSettle) * float64(p.Volume) * p.Contract.Multiplier
	p.LastSettle = settle
	return pnl
}

// Notional is price * |volume| * multiplier. Pure.
func (p *Position) Notional(price float64) float64 {
	return price * float64(abs(p.Volume)) * p.Contract.Multiplier
}

// DaysToExpiry is the contract's trading-day distance to its delist date.
func (p *Position) DaysToExpiry(cal *market.Calendar, date time.Time) int {
	return p.Contract.DaysToExpiry(cal, date)
}

// applyDelta adjusts volume by delta filled at price, returning the P&L
// realized by any closing portion. Adding to a position averages the entry
// price over the combined lots.
func (p *Position) applyDelta(delta int, price float64) float64 {
	if delta == 0 {
		return 0
	}

	var realized float64
	if (p.Volume > 0 && delta < 0) || (p.Volume < 0 && delta > 0) {
		closed := min(abs(delta), abs(p.Volume))
		if p.Volume > 0 {
			realized = (price - p.EntryPrice) * float64(closed) * p.Contract.Multiplier
		} else {
			realized = (p.EntryPrice - price) * float64(closed) * p.Contract.Multiplier
		}
	}

	next := p.Volume + delta
	if next != 0 && abs(next) > abs(p.Volume) {
		added := float64(abs(delta))
		held := float64(abs(p.Volume))
		p.EntryPrice = (p.EntryPrice*held + price*added) / (held + added)
	}

	p.Volume = next
	p.LastSettle = price
	return realized
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
