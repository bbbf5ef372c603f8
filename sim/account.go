package sim

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/rustyeddy/rollsim/market"
)

// Phase tracks the per-date account cycle. The engine drives the account
// through mark -> rebalance -> record exactly once per trading date; the
// account turns that call-order convention into a checked invariant.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseMarked
	PhaseRebalanced
	PhaseRecorded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseMarked:
		return "MARKED"
	case PhaseRebalanced:
		return "REBALANCED"
	case PhaseRecorded:
		return "RECORDED"
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

// AccountParams are the fixed account parameters for a run.
type AccountParams struct {
	InitialCapital  float64
	MarginRate      float64 // fraction of notional posted as margin
	CommissionRate  float64 // fraction of traded amount
	MarginTolerance float64 // cash may go this far below required margin
}

// Account owns cash, margin and the set of open positions, and executes
// daily settlement and rebalancing. It is exclusively owned by a single
// engine loop; no internal locking.
type Account struct {
	AccountParams

	Cash       float64
	RealizedPL float64

	chain     *market.Chain
	positions map[string]*Position
	nav       []market.NAVPoint
	trades    []TradeRecord

	phase     Phase
	cycleDate time.Time

	log *slog.Logger
}

func NewAccount(p AccountParams, chain *market.Chain, log *slog.Logger) *Account {
	if log == nil {
		log = slog.Default()
	}
	return &Account{
		AccountParams: p,
		Cash:          p.InitialCapital,
		chain:         chain,
		positions:     make(map[string]*Position),
		log:           log,
	}
}

func (a *Account) String() string {
	return fmt.Sprintf("Account(capital=%.0f cash=%.0f positions=%d)",
		a.InitialCapital, a.Cash, len(a.positions))
}

// Equity is the marked-to-market account value. With daily settlement every
// position's P&L is already swept into cash, so equity equals cash plus any
// residual mark between last settle and entry (zero in steady state).
func (a *Account) Equity() float64 { return a.Cash }

// NAV is equity normalized by initial capital.
func (a *Account) NAV() float64 { return a.Equity() / a.InitialCapital }

func (a *Account) Phase() Phase { return a.phase }

// Position returns the open position for a contract code, if any.
func (a *Account) Position(code string) (*Position, bool) {
	p, ok := a.positions[code]
	return p, ok
}

// PositionVolume returns the signed held volume for a contract, zero if none.
func (a *Account) PositionVolume(code string) int {
	if p, ok := a.positions[code]; ok {
		return p.Volume
	}
	return 0
}

// HoldingCodes returns the held contract codes, sorted.
func (a *Account) HoldingCodes() []string {
	codes := make([]string, 0, len(a.positions))
	for code := range a.positions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// NAVHistory is the chronological NAV series recorded so far. Read-only.
func (a *Account) NAVHistory() []market.NAVPoint { return a.nav }

// Trades is the append-only trade log. Read-only.
func (a *Account) Trades() []TradeRecord { return a.trades }

// MarkToMarket settles every open position against today's settlement price
// and sweeps the total daily P&L into cash. A held contract with no bar today
// is fatal: silently skipping it would corrupt the P&L chain.
func (a *Account) MarkToMarket(snap *market.Snapshot) (float64, error) {
	if a.phase != PhaseIdle && a.phase != PhaseRecorded {
		return 0, fmt.Errorf("mark to market on %s in phase %s: %w",
			tradeDate(snap), a.phase, ErrInvalidTransition)
	}
	if !a.cycleDate.IsZero() && !snap.Date.After(a.cycleDate) {
		return 0, fmt.Errorf("mark to market on %s: cycle %s already settled: %w",
			tradeDate(snap), a.cycleDate.Format("2006-01-02"), ErrInvalidTransition)
	}

	var daily float64
	for _, code := range a.HoldingCodes() {
		settle, ok := snap.Settle(code)
		if !ok {
			return 0, fmt.Errorf("no settle for held contract %s on %s: %w",
				code, tradeDate(snap), ErrMissingMarketData)
		}
		daily += a.positions[code].MarkToMarket(settle)
	}

	a.Cash += daily
	a.phase = PhaseMarked
	a.cycleDate = snap.Date

	a.log.Debug("mark to market",
		"date", tradeDate(snap), "daily_pnl", daily, "cash", a.Cash)
	return daily, nil
}

// RequiredMargin sums notional * margin rate over open positions at today's
// settlement price. Pure.
func (a *Account) RequiredMargin(snap *market.Snapshot) float64 {
	var total float64
	for code, pos := range a.positions {
		price, ok := snap.Settle(code)
		if !ok {
			price = pos.LastSettle
		}
		total += pos.Notional(price) * a.MarginRate
	}
	return total
}

// AvailableMargin is cash minus required margin. Negative means the account
// is over-leveraged; callers decide whether that breaches tolerance.
func (a *Account) AvailableMargin(snap *market.Snapshot) float64 {
	return a.Cash - a.RequiredMargin(snap)
}

// RebalanceToTarget trades every contract whose target differs from the
// current holding, filling at today's settlement price. Contracts held but
// absent from targets are treated as target zero. Processing is lexicographic
// by contract code so identical inputs always produce identical trade logs.
func (a *Account) RebalanceToTarget(targets map[string]int, snap *market.Snapshot) (float64, error) {
	// A repeated rebalance with the same targets is a no-op, so the phase
	// gate admits both MARKED and REBALANCED within the current date.
	if (a.phase != PhaseMarked && a.phase != PhaseRebalanced) || !a.cycleDate.Equal(snap.Date) {
		return 0, fmt.Errorf("rebalance on %s in phase %s: %w",
			tradeDate(snap), a.phase, ErrInvalidTransition)
	}

	codes := a.unionCodes(targets)

	// Roll classification: a close and an open in the same rebalance.
	var closing, opening bool
	for _, code := range codes {
		cur, tgt := a.PositionVolume(code), targets[code]
		if cur != 0 && tgt == 0 {
			closing = true
		}
		if cur == 0 && tgt != 0 {
			opening = true
		}
	}

	hadPositions := len(a.positions) > 0

	var commission float64
	for _, code := range codes {
		delta := targets[code] - a.PositionVolume(code)
		if delta == 0 {
			continue
		}
		price, ok := snap.Settle(code)
		if !ok {
			return commission, fmt.Errorf("no settle for %s on %s: %w",
				code, tradeDate(snap), ErrMissingMarketData)
		}
		reason := a.classify(code, targets[code], hadPositions, closing, opening)
		fee, err := a.execute(code, delta, price, snap.Date, reason)
		if err != nil {
			return commission, err
		}
		commission += fee
	}

	if avail := a.AvailableMargin(snap); avail < -a.MarginTolerance {
		return commission, fmt.Errorf("available margin %.2f below tolerance on %s: %w",
			avail, tradeDate(snap), ErrMarginBreach)
	}

	a.phase = PhaseRebalanced
	return commission, nil
}

// RecordNAV appends today's NAV to the history. Must be called exactly once
// per trading date, after rebalancing.
func (a *Account) RecordNAV(snap *market.Snapshot) error {
	if a.phase != PhaseRebalanced || !a.cycleDate.Equal(snap.Date) {
		return fmt.Errorf("record NAV on %s in phase %s: %w",
			tradeDate(snap), a.phase, ErrInvalidTransition)
	}
	a.nav = append(a.nav, market.NAVPoint{Date: snap.Date, NAV: a.NAV()})
	a.phase = PhaseRecorded
	return nil
}

func (a *Account) execute(code string, delta int, price float64, date time.Time, reason string) (float64, error) {
	contract, ok := a.chain.Contract(code)
	if !ok {
		return 0, fmt.Errorf("unknown contract %s on %s: %w",
			code, date.Format("2006-01-02"), ErrMissingMarketData)
	}

	amount := math.Abs(float64(delta)) * price * contract.Multiplier
	fee := amount * a.CommissionRate
	a.Cash -= fee

	var realized float64
	if pos, held := a.positions[code]; held {
		realized = pos.applyDelta(delta, price)
		a.RealizedPL += realized
		if pos.Volume == 0 {
			delete(a.positions, code)
		}
	} else {
		a.positions[code] = NewPosition(contract, delta, price)
	}

	a.trades = append(a.trades, TradeRecord{
		Date:       date,
		Contract:   code,
		Volume:     delta,
		Price:      price,
		Amount:     amount,
		Commission: fee,
		RealizedPL: realized,
		Reason:     reason,
	})

	a.log.Debug("fill",
		"date", date.Format("2006-01-02"), "contract", code,
		"delta", delta, "price", price, "commission", fee, "reason", reason)
	return fee, nil
}

func (a *Account) classify(code string, target int, hadPositions, closing, opening bool) string {
	cur := a.PositionVolume(code)
	switch {
	case cur != 0 && target == 0:
		if opening {
			return ReasonRoll
		}
		return ReasonClose
	case cur == 0 && target != 0:
		if closing {
			return ReasonRoll
		}
		if !hadPositions {
			return ReasonOpen
		}
		return ReasonRebalance
	default:
		return ReasonRebalance
	}
}

// unionCodes returns holdings plus target keys, sorted, deduplicated.
func (a *Account) unionCodes(targets map[string]int) []string {
	seen := make(map[string]struct{}, len(a.positions)+len(targets))
	for code := range a.positions {
		seen[code] = struct{}{}
	}
	for code := range targets {
		seen[code] = struct{}{}
	}
	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func tradeDate(snap *market.Snapshot) string {
	return snap.Date.Format("2006-01-02")
}
