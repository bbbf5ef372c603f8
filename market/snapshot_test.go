package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSnapshot() *Snapshot {
	date := MustDate(2024, 1, 8)
	return &Snapshot{
		Date:     date,
		IndexBar: IndexBar{Date: date, Close: 5000.0},
		Contracts: map[string]FuturesBar{
			"IC2401.CFX": {Date: date, Settle: 4900.0, Volume: 1000, OpenInterest: 5000},
			"IC2402.CFX": {Date: date, Settle: 4850.0, Volume: 800, OpenInterest: 3000},
		},
	}
}

func TestSnapshotBasis(t *testing.T) {
	s := testSnapshot()

	b, ok := s.Basis("IC2401.CFX")
	assert.True(t, ok)
	assert.InDelta(t, (4900.0-5000.0)/5000.0, b, 1e-12)

	_, ok = s.Basis("IC9999.CFX")
	assert.False(t, ok, "unknown contract has no basis")
}

func TestSnapshotCodesSorted(t *testing.T) {
	s := testSnapshot()
	assert.Equal(t, []string{"IC2401.CFX", "IC2402.CFX"}, s.Codes())
}

func TestChainSelectionOrdering(t *testing.T) {
	ix := NewIndex("000905.SH", "CSI 500")
	ch := NewChain("IC", ix)

	near := NewContract("IC2401.CFX", "IC", 200, MustDate(2023, 10, 1), MustDate(2024, 1, 19))
	far := NewContract("IC2402.CFX", "IC", 200, MustDate(2023, 11, 1), MustDate(2024, 2, 16))
	dead := NewContract("IC2312.CFX", "IC", 200, MustDate(2023, 9, 1), MustDate(2023, 12, 15))
	ch.Add(far)
	ch.Add(near)
	ch.Add(dead)

	date := MustDate(2024, 1, 8)
	tradable := ch.Tradable(date)
	if assert.Len(t, tradable, 2) {
		assert.Equal(t, "IC2401.CFX", tradable[0].Code, "soonest expiry first")
		assert.Equal(t, "IC2402.CFX", tradable[1].Code)
	}

	later := ch.ExpiringAfter(date, near.DelistDate)
	if assert.Len(t, later, 1) {
		assert.Equal(t, "IC2402.CFX", later[0].Code)
	}
}

func TestContractExpiryWindow(t *testing.T) {
	c := NewContract("IC2401.CFX", "IC", 200, MustDate(2023, 10, 1), MustDate(2024, 1, 19))

	assert.False(t, c.IsTradable(MustDate(2023, 9, 30)))
	assert.True(t, c.IsTradable(MustDate(2024, 1, 19)), "tradable on delist date")
	assert.True(t, c.IsExpired(MustDate(2024, 1, 22)))

	cal := NewCalendar(weekdayDates(MustDate(2024, 1, 1), 20))
	// 2024-01-15 .. 2024-01-19 is four trading days apart.
	assert.Equal(t, 4, c.DaysToExpiry(cal, MustDate(2024, 1, 15)))
	// Past expiry, negative.
	assert.Equal(t, -1, c.DaysToExpiry(cal, MustDate(2024, 1, 22)))
}
