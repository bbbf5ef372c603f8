package strategies

import (
	"fmt"
	"log/slog"

	"github.com/rustyeddy/rollsim/config"
	"github.com/rustyeddy/rollsim/market"
)

// Names lists the known strategies.
func Names() []string { return []string{"baseline-roll", "basis-timing", "smart-roll"} }

// FromConfig builds the configured strategy over the given contract chain and
// trading calendar.
func FromConfig(cfg *config.Config, chain *market.Chain, cal *market.Calendar, log *slog.Logger) (Strategy, error) {
	sc := cfg.Strategy
	base := BaselineRollConfig{
		FutCode:              sc.FutCode,
		Selection:            sc.Selection,
		RollDaysBeforeExpiry: sc.RollDaysBeforeExpiry,
		MinRollDays:          sc.MinRollDays,
		TargetLeverage:       sc.TargetLeverage,
	}

	switch sc.Name {
	case "baseline-roll":
		return NewBaselineRoll(base, chain, cal, log), nil

	case "basis-timing":
		return NewBasisTiming(BasisTimingConfig{
			BaselineRollConfig: base,
			EntryThreshold:     sc.BasisEntryThreshold,
			ExitThreshold:      sc.BasisExitThreshold,
			LookbackWindow:     sc.LookbackWindow,
		}, chain, cal, log), nil

	case "smart-roll":
		return NewSmartRoll(SmartRollConfig{
			BaselineRollConfig: base,
			Criteria:           sc.RollCriteria,
		}, chain, cal, log), nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: baseline-roll, basis-timing, smart-roll)", sc.Name)
	}
}
