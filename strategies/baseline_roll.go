package strategies

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/rustyeddy/rollsim/market"
)

// BaselineRollConfig parameterizes the plain calendar-roll strategy.
type BaselineRollConfig struct {
	FutCode              string
	Selection            string // nearby, volume, oi
	RollDaysBeforeExpiry int    // roll when trading days to expiry <= this
	MinRollDays          int    // never select a contract this close to expiry
	TargetLeverage       float64
}

// BaselineRoll holds one contract of the tracked product at a time, rolls it
// a fixed number of trading days before expiry, and resizes daily so that
// notional exposure stays near TargetLeverage of equity. The daily resize
// produces small turnover as prices drift; that is intended behavior, not
// noise to be smoothed away.
type BaselineRoll struct {
	BaselineRollConfig

	chain *market.Chain
	cal   *market.Calendar
	log   *slog.Logger
}

func NewBaselineRoll(cfg BaselineRollConfig, chain *market.Chain, cal *market.Calendar, log *slog.Logger) *BaselineRoll {
	if cfg.Selection == "" {
		cfg.Selection = SelectNearby
	}
	if cfg.TargetLeverage == 0 {
		cfg.TargetLeverage = 1.0
	}
	if log == nil {
		log = slog.Default()
	}
	return &BaselineRoll{
		BaselineRollConfig: cfg,
		chain:              chain,
		cal:                cal,
		log:                log,
	}
}

func (s *BaselineRoll) Name() string { return "baseline-roll" }

func (s *BaselineRoll) OnBar(snap *market.Snapshot, acct AccountState) (Targets, error) {
	return s.decide(snap, acct, s.TargetLeverage, s.expiryRoll)
}

// expiryRoll triggers on the first date the held contract is within the
// configured trading-day window of its delist date, never earlier.
func (s *BaselineRoll) expiryRoll(current *market.Contract, snap *market.Snapshot) bool {
	return current.DaysToExpiry(s.cal, snap.Date) <= s.RollDaysBeforeExpiry
}

// decide is the shared decision core: hold-or-roll, then size. Variants
// plug in their own roll trigger and effective leverage.
func (s *BaselineRoll) decide(
	snap *market.Snapshot,
	acct AccountState,
	leverage float64,
	shouldRoll func(*market.Contract, *market.Snapshot) bool,
) (Targets, error) {
	targets := Targets{}

	current, stale := s.heldContracts(acct)
	// Anything left over from an interrupted roll is closed out explicitly.
	for _, c := range stale {
		targets[c.Code] = 0
	}

	if leverage <= 0 {
		// Flat regime: close whatever is held, open nothing.
		if current != nil {
			targets[current.Code] = 0
		}
		return targets, nil
	}

	if current == nil {
		next, err := s.selectContract(snap, noCutoff)
		if err != nil {
			return nil, err
		}
		targets[next.Code] = s.targetVolume(acct, snap, next, leverage)
		return targets, nil
	}

	if shouldRoll(current, snap) {
		next, err := s.selectContract(snap, current.DelistDate)
		if err != nil {
			return nil, err
		}
		s.log.Info("roll",
			"date", snap.Date.Format("2006-01-02"),
			"from", current.Code, "to", next.Code,
			"days_to_expiry", current.DaysToExpiry(s.cal, snap.Date))
		targets[current.Code] = 0
		targets[next.Code] = s.targetVolume(acct, snap, next, leverage)
		return targets, nil
	}

	// Keep the contract, recompute volume from the latest equity and price
	// so leverage stays roughly constant.
	targets[current.Code] = s.targetVolume(acct, snap, current, leverage)
	return targets, nil
}

// heldContracts resolves the account's holdings for the tracked product.
// At most one contract is current (the latest expiry); any others are stale
// remnants the caller must flatten.
func (s *BaselineRoll) heldContracts(acct AccountState) (current *market.Contract, stale []*market.Contract) {
	for _, code := range acct.HoldingCodes() {
		c, ok := s.chain.Contract(code)
		if !ok || c.FutCode != s.FutCode {
			continue
		}
		if current == nil || c.DelistDate.After(current.DelistDate) {
			if current != nil {
				stale = append(stale, current)
			}
			current = c
		} else {
			stale = append(stale, c)
		}
	}
	return current, stale
}

// selectContract applies the configured selection rule to the contracts
// tradable in this snapshot. A non-zero after cutoff restricts candidates to
// later expiries (roll targets). Ties break by earliest expiry, then code.
func (s *BaselineRoll) selectContract(snap *market.Snapshot, after time.Time) (*market.Contract, error) {
	var candidates []*market.Contract
	for _, c := range s.chain.Tradable(snap.Date) {
		if !after.IsZero() && !c.DelistDate.After(after) {
			continue
		}
		if c.DaysToExpiry(s.cal, snap.Date) < s.MinRollDays {
			continue
		}
		if _, ok := snap.Bar(c.Code); !ok {
			continue
		}
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("select %s contract on %s: %w",
			s.FutCode, snap.Date.Format("2006-01-02"), ErrNoEligibleContract)
	}

	// Candidates arrive sorted by (expiry, code), so the first strict
	// maximum wins and ties keep the earlier expiry.
	switch s.Selection {
	case SelectVolume:
		return maxBy(candidates, func(c *market.Contract) float64 {
			b, _ := snap.Bar(c.Code)
			return b.Volume
		}), nil
	case SelectOI:
		return maxBy(candidates, func(c *market.Contract) float64 {
			b, _ := snap.Bar(c.Code)
			return b.OpenInterest
		}), nil
	default: // nearby
		return candidates[0], nil
	}
}

// targetVolume sizes NAV-proportionally at the given leverage, floored to
// whole lots.
func (s *BaselineRoll) targetVolume(acct AccountState, snap *market.Snapshot, c *market.Contract, leverage float64) int {
	settle, ok := snap.Settle(c.Code)
	if !ok || settle <= 0 {
		return 0
	}
	lots := math.Floor(acct.Equity() * leverage / (settle * c.Multiplier))
	if lots < 0 {
		return 0
	}
	return int(lots)
}

func maxBy(cs []*market.Contract, key func(*market.Contract) float64) *market.Contract {
	best := cs[0]
	bestKey := key(best)
	for _, c := range cs[1:] {
		if k := key(c); k > bestKey {
			best, bestKey = c, k
		}
	}
	return best
}
