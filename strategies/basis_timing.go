package strategies

import (
	"log/slog"
	"sort"

	"github.com/rustyeddy/rollsim/market"
)

// BasisTimingConfig parameterizes the basis-timed variant.
type BasisTimingConfig struct {
	BaselineRollConfig

	// EntryThreshold: basis at or below this (deep discount) scales leverage
	// to full. ExitThreshold: basis at or above this scales leverage to zero
	// (flat, never short). Between the two the previous scale is held, which
	// keeps the strategy from thrashing around a single cutoff.
	EntryThreshold float64
	ExitThreshold  float64
	LookbackWindow int // trailing basis observations retained
}

// BasisTiming layers discount/premium timing on top of the calendar roll:
// sizing scales with the basis regime while the expiry roll trigger still
// applies unconditionally.
type BasisTiming struct {
	*BaselineRoll

	cfg     BasisTimingConfig
	history []float64
	scale   float64
}

func NewBasisTiming(cfg BasisTimingConfig, chain *market.Chain, cal *market.Calendar, log *slog.Logger) *BasisTiming {
	if cfg.LookbackWindow <= 0 {
		cfg.LookbackWindow = 120
	}
	return &BasisTiming{
		BaselineRoll: NewBaselineRoll(cfg.BaselineRollConfig, chain, cal, log),
		cfg:          cfg,
		scale:        1.0, // start fully invested; premium scales off
	}
}

func (s *BasisTiming) Name() string { return "basis-timing" }

func (s *BasisTiming) OnBar(snap *market.Snapshot, acct AccountState) (Targets, error) {
	// If no reference contract exists the basis signal simply holds its
	// previous regime; decide() raises ErrNoEligibleContract itself whenever
	// a contract is actually needed.
	code, err := s.referenceCode(snap, acct)
	if err == nil {
		s.updateScale(snap, code)
	}

	return s.decide(snap, acct, s.TargetLeverage*s.scale, s.expiryRoll)
}

func (s *BasisTiming) updateScale(snap *market.Snapshot, code string) {
	if basis, ok := snap.Basis(code); ok {
		s.observe(basis)
		prev := s.scale
		switch {
		case basis <= s.cfg.EntryThreshold:
			s.scale = 1.0
		case basis >= s.cfg.ExitThreshold:
			s.scale = 0.0
		}
		if s.scale != prev {
			s.log.Info("basis regime change",
				"date", snap.Date.Format("2006-01-02"), "contract", code,
				"basis", basis, "percentile", s.percentile(basis), "scale", s.scale)
		}
	}
}

// referenceCode picks the contract whose basis drives the timing signal: the
// held contract if any, otherwise today's selection candidate.
func (s *BasisTiming) referenceCode(snap *market.Snapshot, acct AccountState) (string, error) {
	if current, _ := s.heldContracts(acct); current != nil {
		return current.Code, nil
	}
	c, err := s.selectContract(snap, noCutoff)
	if err != nil {
		return "", err
	}
	return c.Code, nil
}

func (s *BasisTiming) observe(basis float64) {
	s.history = append(s.history, basis)
	if n := len(s.history) - s.cfg.LookbackWindow; n > 0 {
		s.history = s.history[n:]
	}
}

// percentile is the rank of x within the trailing basis window, in [0, 1].
func (s *BasisTiming) percentile(x float64) float64 {
	if len(s.history) == 0 {
		return 0
	}
	sorted := append([]float64(nil), s.history...)
	sort.Float64s(sorted)
	i := sort.SearchFloat64s(sorted, x)
	return float64(i) / float64(len(sorted))
}
