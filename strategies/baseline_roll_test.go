package strategies

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/rollsim/market"
)

type fakeAccount struct {
	holdings map[string]int
	equity   float64
}

func (f *fakeAccount) HoldingCodes() []string {
	var codes []string
	for code, v := range f.holdings {
		if v != 0 {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

func (f *fakeAccount) PositionVolume(code string) int { return f.holdings[code] }
func (f *fakeAccount) Equity() float64                { return f.equity }

func flat(equity float64) *fakeAccount {
	return &fakeAccount{holdings: map[string]int{}, equity: equity}
}

func holding(code string, vol int, equity float64) *fakeAccount {
	return &fakeAccount{holdings: map[string]int{code: vol}, equity: equity}
}

func weekdays(start time.Time, n int) []time.Time {
	var out []time.Time
	d := market.Day(start)
	for len(out) < n {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			out = append(out, d)
		}
		d = d.AddDate(0, 0, 1)
	}
	return out
}

type chainFixture struct {
	chain *market.Chain
	cal   *market.Calendar
}

func newFixture() *chainFixture {
	ix := market.NewIndex("000905.SH", "CSI 500")
	ch := market.NewChain("IC", ix)
	ch.Add(market.NewContract("IC2401.CFX", "IC", 200,
		market.MustDate(2023, 10, 23), market.MustDate(2024, 1, 19)))
	ch.Add(market.NewContract("IC2402.CFX", "IC", 200,
		market.MustDate(2023, 11, 20), market.MustDate(2024, 2, 16)))
	ch.Add(market.NewContract("IC2403.CFX", "IC", 200,
		market.MustDate(2023, 12, 18), market.MustDate(2024, 3, 15)))
	return &chainFixture{
		chain: ch,
		cal:   market.NewCalendar(weekdays(market.MustDate(2024, 1, 1), 60)),
	}
}

type quote struct {
	settle float64
	volume float64
	oi     float64
}

func (fx *chainFixture) snap(date time.Time, quotes map[string]quote) *market.Snapshot {
	bars := make(map[string]market.FuturesBar, len(quotes))
	for code, q := range quotes {
		bars[code] = market.FuturesBar{
			Date:         date,
			Settle:       q.settle,
			Close:        q.settle,
			Volume:       q.volume,
			OpenInterest: q.oi,
		}
	}
	return &market.Snapshot{
		Date:      date,
		IndexBar:  market.IndexBar{Date: date, Close: 5000.0},
		Contracts: bars,
	}
}

func baseConfig() BaselineRollConfig {
	return BaselineRollConfig{
		FutCode:              "IC",
		Selection:            SelectNearby,
		RollDaysBeforeExpiry: 2,
		TargetLeverage:       1.0,
	}
}

func TestBaselineRollInitialSelection(t *testing.T) {
	fx := newFixture()
	date := market.MustDate(2024, 1, 8)
	snap := fx.snap(date, map[string]quote{
		"IC2401.CFX": {settle: 5000, volume: 900, oi: 4000},
		"IC2402.CFX": {settle: 4980, volume: 1200, oi: 3500},
		"IC2403.CFX": {settle: 4960, volume: 400, oi: 6000},
	})

	tests := []struct {
		selection string
		want      string
	}{
		{SelectNearby, "IC2401.CFX"},
		{SelectVolume, "IC2402.CFX"},
		{SelectOI, "IC2403.CFX"},
	}
	for _, tt := range tests {
		t.Run(tt.selection, func(t *testing.T) {
			cfg := baseConfig()
			cfg.Selection = tt.selection
			s := NewBaselineRoll(cfg, fx.chain, fx.cal, nil)

			targets, err := s.OnBar(snap, flat(10_000_000))
			require.NoError(t, err)
			require.Len(t, targets, 1)
			// 10M / (settle * 200) floored.
			assert.Contains(t, targets, tt.want)
			assert.Greater(t, targets[tt.want], 0)
		})
	}
}

func TestBaselineRollSelectionTieBreak(t *testing.T) {
	fx := newFixture()
	date := market.MustDate(2024, 1, 8)
	// Equal volume everywhere: earliest expiry wins.
	snap := fx.snap(date, map[string]quote{
		"IC2401.CFX": {settle: 5000, volume: 1000},
		"IC2402.CFX": {settle: 4980, volume: 1000},
		"IC2403.CFX": {settle: 4960, volume: 1000},
	})

	cfg := baseConfig()
	cfg.Selection = SelectVolume
	s := NewBaselineRoll(cfg, fx.chain, fx.cal, nil)

	targets, err := s.OnBar(snap, flat(10_000_000))
	require.NoError(t, err)
	assert.Contains(t, targets, "IC2401.CFX")
}

// Roll exactly when trading days to expiry hits the threshold, not before.
func TestBaselineRollTrigger(t *testing.T) {
	fx := newFixture()
	s := NewBaselineRoll(baseConfig(), fx.chain, fx.cal, nil)
	acct := holding("IC2401.CFX", 10, 10_000_000)

	quotes := map[string]quote{
		"IC2401.CFX": {settle: 5000, volume: 900},
		"IC2402.CFX": {settle: 4980, volume: 1200},
		"IC2403.CFX": {settle: 4960, volume: 400},
	}

	// 2024-01-16: three trading days to the 2024-01-19 delist. No roll.
	targets, err := s.OnBar(fx.snap(market.MustDate(2024, 1, 16), quotes), acct)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, 10, targets["IC2401.CFX"])

	// 2024-01-17: two trading days left. Roll: old explicit zero, exactly
	// one later-expiry contract targeted.
	targets, err = s.OnBar(fx.snap(market.MustDate(2024, 1, 17), quotes), acct)
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, 0, targets["IC2401.CFX"])
	assert.Greater(t, targets["IC2402.CFX"], 0)
}

// Daily leverage maintenance resizes with price drift. This turnover is part
// of the strategy economics, not churn to be optimized away.
func TestBaselineRollLeverageMaintenance(t *testing.T) {
	fx := newFixture()
	s := NewBaselineRoll(baseConfig(), fx.chain, fx.cal, nil)
	acct := holding("IC2401.CFX", 10, 10_000_000)

	targets, err := s.OnBar(fx.snap(market.MustDate(2024, 1, 8), map[string]quote{
		"IC2401.CFX": {settle: 5000},
		"IC2402.CFX": {settle: 4980},
	}), acct)
	require.NoError(t, err)
	assert.Equal(t, 10, targets["IC2401.CFX"]) // 10M/(5000*200) = 10

	targets, err = s.OnBar(fx.snap(market.MustDate(2024, 1, 9), map[string]quote{
		"IC2401.CFX": {settle: 5200},
		"IC2402.CFX": {settle: 5180},
	}), acct)
	require.NoError(t, err)
	assert.Equal(t, 9, targets["IC2401.CFX"]) // floor(10M/(5200*200)) = 9
}

func TestBaselineRollNoEligibleContract(t *testing.T) {
	fx := newFixture()
	s := NewBaselineRoll(baseConfig(), fx.chain, fx.cal, nil)

	// Date past every delist: nothing tradable.
	date := market.MustDate(2024, 3, 25)
	_, err := s.OnBar(fx.snap(date, map[string]quote{}), flat(10_000_000))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoEligibleContract))
}

func TestBaselineRollFlattensStaleHoldings(t *testing.T) {
	fx := newFixture()
	s := NewBaselineRoll(baseConfig(), fx.chain, fx.cal, nil)

	acct := &fakeAccount{
		holdings: map[string]int{"IC2401.CFX": 3, "IC2402.CFX": 10},
		equity:   10_000_000,
	}
	targets, err := s.OnBar(fx.snap(market.MustDate(2024, 1, 8), map[string]quote{
		"IC2401.CFX": {settle: 5000},
		"IC2402.CFX": {settle: 4980},
	}), acct)
	require.NoError(t, err)

	// The earlier-expiry leftover is closed; the latest expiry is current.
	assert.Equal(t, 0, targets["IC2401.CFX"])
	assert.Greater(t, targets["IC2402.CFX"], 0)
}

func TestBaselineRollMinRollDaysFilter(t *testing.T) {
	fx := newFixture()
	cfg := baseConfig()
	cfg.MinRollDays = 5
	s := NewBaselineRoll(cfg, fx.chain, fx.cal, nil)

	// 2024-01-16: IC2401 has only 3 trading days left, below MinRollDays,
	// so the initial pick skips it even under the nearby rule.
	targets, err := s.OnBar(fx.snap(market.MustDate(2024, 1, 16), map[string]quote{
		"IC2401.CFX": {settle: 5000},
		"IC2402.CFX": {settle: 4980},
	}), flat(10_000_000))
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Contains(t, targets, "IC2402.CFX")
}
