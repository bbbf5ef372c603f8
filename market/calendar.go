package market

import (
	"sort"
	"time"
)

// Calendar is the trading calendar the whole simulation runs on: an ascending
// list of trading dates with O(1) membership and trading-day distance.
type Calendar struct {
	dates []time.Time
	index map[time.Time]int
}

func NewCalendar(dates []time.Time) *Calendar {
	norm := make([]time.Time, 0, len(dates))
	seen := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		d = Day(d)
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		norm = append(norm, d)
	}
	sortDates(norm)

	idx := make(map[time.Time]int, len(norm))
	for i, d := range norm {
		idx[d] = i
	}
	return &Calendar{dates: norm, index: idx}
}

func (c *Calendar) Len() int { return len(c.dates) }

func (c *Calendar) Contains(date time.Time) bool {
	_, ok := c.index[Day(date)]
	return ok
}

// Dates returns all trading dates, ascending. The returned slice is shared;
// callers must not modify it.
func (c *Calendar) Dates() []time.Time { return c.dates }

// Between returns the trading dates in [start, end], ascending.
func (c *Calendar) Between(start, end time.Time) []time.Time {
	start, end = Day(start), Day(end)
	lo := sort.Search(len(c.dates), func(i int) bool { return !c.dates[i].Before(start) })
	hi := sort.Search(len(c.dates), func(i int) bool { return c.dates[i].After(end) })
	if lo >= hi {
		return nil
	}
	return c.dates[lo:hi]
}

// TradingDaysBetween returns the signed number of trading days from a to b.
// Both endpoints must be on the calendar, otherwise ok is false.
func (c *Calendar) TradingDaysBetween(a, b time.Time) (n int, ok bool) {
	ia, oka := c.index[Day(a)]
	ib, okb := c.index[Day(b)]
	if !oka || !okb {
		return 0, false
	}
	return ib - ia, true
}

func sortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}
