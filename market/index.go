package market

import (
	"fmt"
	"time"
)

// Index is the cash equity index the futures chain tracks (e.g. CSI 500).
type Index struct {
	Code string
	Name string

	bars map[time.Time]IndexBar
}

func NewIndex(code, name string) *Index {
	return &Index{Code: code, Name: name, bars: make(map[time.Time]IndexBar)}
}

func (ix *Index) String() string {
	return fmt.Sprintf("Index(%s %s bars=%d)", ix.Code, ix.Name, len(ix.bars))
}

func (ix *Index) AddBar(b IndexBar) {
	b.Date = Day(b.Date)
	ix.bars[b.Date] = b
}

func (ix *Index) Bar(date time.Time) (IndexBar, bool) {
	b, ok := ix.bars[Day(date)]
	return b, ok
}

func (ix *Index) Close(date time.Time) (float64, bool) {
	b, ok := ix.Bar(date)
	if !ok {
		return 0, false
	}
	return b.Close, true
}

// TradingDates returns all dates with index bars, ascending. The index is the
// usual source of the backtest Calendar.
func (ix *Index) TradingDates() []time.Time {
	dates := make([]time.Time, 0, len(ix.bars))
	for d := range ix.bars {
		dates = append(dates, d)
	}
	sortDates(dates)
	return dates
}

// NAVSeries returns the index closes in [start, end] normalized so the first
// value is 1.0. Used as the benchmark path by the analyzer.
func (ix *Index) NAVSeries(start, end time.Time) []NAVPoint {
	var out []NAVPoint
	var base float64
	for _, d := range ix.TradingDates() {
		if d.Before(Day(start)) || d.After(Day(end)) {
			continue
		}
		c := ix.bars[d].Close
		if base == 0 {
			base = c
		}
		out = append(out, NAVPoint{Date: d, NAV: c / base})
	}
	return out
}

// NAVPoint is one (date, normalized NAV) observation of an equity path.
type NAVPoint struct {
	Date time.Time
	NAV  float64
}
