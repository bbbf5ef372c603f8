package strategies

import (
	"log/slog"

	"github.com/rustyeddy/rollsim/market"
)

// SmartRollConfig parameterizes the liquidity-driven roll variant.
type SmartRollConfig struct {
	BaselineRollConfig

	// Criteria is "volume" or "oi": the liquidity measure whose crossover
	// triggers the roll.
	Criteria string
}

// SmartRoll rolls when the next contract's liquidity overtakes the held one,
// instead of waiting for a fixed calendar offset. Expiry still forces the
// roll as a safety net when the crossover never happens.
type SmartRoll struct {
	*BaselineRoll

	criteria string
}

func NewSmartRoll(cfg SmartRollConfig, chain *market.Chain, cal *market.Calendar, log *slog.Logger) *SmartRoll {
	if cfg.Criteria == "" {
		cfg.Criteria = SelectVolume
	}
	return &SmartRoll{
		BaselineRoll: NewBaselineRoll(cfg.BaselineRollConfig, chain, cal, log),
		criteria:     cfg.Criteria,
	}
}

func (s *SmartRoll) Name() string { return "smart-roll" }

func (s *SmartRoll) OnBar(snap *market.Snapshot, acct AccountState) (Targets, error) {
	return s.decide(snap, acct, s.TargetLeverage, s.liquidityRoll)
}

func (s *SmartRoll) liquidityRoll(current *market.Contract, snap *market.Snapshot) bool {
	if s.expiryRoll(current, snap) {
		return true
	}

	next, err := s.selectContract(snap, current.DelistDate)
	if err != nil {
		return false
	}

	curBar, ok := snap.Bar(current.Code)
	if !ok {
		return false
	}
	nextBar, _ := snap.Bar(next.Code)

	var cur, cand float64
	if s.criteria == SelectOI {
		cur, cand = curBar.OpenInterest, nextBar.OpenInterest
	} else {
		cur, cand = curBar.Volume, nextBar.Volume
	}

	if cand > cur && cand > 0 {
		s.log.Info("liquidity crossover",
			"date", snap.Date.Format("2006-01-02"), "criteria", s.criteria,
			"held", current.Code, "held_liquidity", cur,
			"next", next.Code, "next_liquidity", cand)
		return true
	}
	return false
}
