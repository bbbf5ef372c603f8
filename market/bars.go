package market

import "time"

// IndexBar is one daily bar of the cash equity index.
type IndexBar struct {
	Date  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// FuturesBar is one daily bar of a futures contract. Settle is the official
// settlement price used for daily mark-to-market.
type FuturesBar struct {
	Date         time.Time
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Settle       float64
	PreSettle    float64
	Volume       float64 // lots
	Amount       float64
	OpenInterest float64 // lots
}

// Day returns t normalized to UTC midnight. All bar maps are keyed by
// normalized dates so that time-of-day and zone noise from data files never
// splits a trading day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MustDate builds a normalized trade date. Convenience for tests and fixtures.
func MustDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
