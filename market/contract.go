package market

import (
	"fmt"
	"time"
)

// Contract is a single futures contract (e.g. IC2401.CFX) together with its
// daily bars. Bars are keyed by normalized trade date.
type Contract struct {
	Code       string // full contract code, unique
	FutCode    string // product code, e.g. IC
	Name       string
	Multiplier float64
	ListDate   time.Time
	DelistDate time.Time

	bars map[time.Time]FuturesBar
}

func NewContract(code, futCode string, multiplier float64, list, delist time.Time) *Contract {
	return &Contract{
		Code:       code,
		FutCode:    futCode,
		Name:       code,
		Multiplier: multiplier,
		ListDate:   Day(list),
		DelistDate: Day(delist),
		bars:       make(map[time.Time]FuturesBar),
	}
}

func (c *Contract) String() string {
	return fmt.Sprintf("Contract(%s mult=%g delist=%s)", c.Code, c.Multiplier, c.DelistDate.Format("2006-01-02"))
}

func (c *Contract) AddBar(b FuturesBar) {
	b.Date = Day(b.Date)
	c.bars[b.Date] = b
}

func (c *Contract) Bar(date time.Time) (FuturesBar, bool) {
	b, ok := c.bars[Day(date)]
	return b, ok
}

// Settle returns the settlement price on date, if a bar exists.
func (c *Contract) Settle(date time.Time) (float64, bool) {
	b, ok := c.Bar(date)
	if !ok {
		return 0, false
	}
	return b.Settle, true
}

func (c *Contract) Volume(date time.Time) float64 {
	b, _ := c.Bar(date)
	return b.Volume
}

func (c *Contract) OpenInterest(date time.Time) float64 {
	b, _ := c.Bar(date)
	return b.OpenInterest
}

func (c *Contract) IsListed(date time.Time) bool {
	return !Day(date).Before(c.ListDate)
}

func (c *Contract) IsExpired(date time.Time) bool {
	return Day(date).After(c.DelistDate)
}

func (c *Contract) IsTradable(date time.Time) bool {
	return c.IsListed(date) && !c.IsExpired(date)
}

// DaysToExpiry counts trading days from date to the delist date per cal.
// Falls back to calendar days when either endpoint is off-calendar.
// Negative after expiry.
func (c *Contract) DaysToExpiry(cal *Calendar, date time.Time) int {
	d := Day(date)
	if cal != nil {
		if n, ok := cal.TradingDaysBetween(d, c.DelistDate); ok {
			return n
		}
	}
	return int(c.DelistDate.Sub(d).Hours() / 24)
}

// TradingDates returns the dates with bar data, ascending.
func (c *Contract) TradingDates() []time.Time {
	dates := make([]time.Time, 0, len(c.bars))
	for d := range c.bars {
		dates = append(dates, d)
	}
	sortDates(dates)
	return dates
}
