package market

import (
	"fmt"
	"sort"
	"time"
)

// Chain holds every contract of one product code plus the underlying index.
// It is the read-only contract lookup service for strategies and the account.
type Chain struct {
	FutCode string
	Index   *Index

	contracts map[string]*Contract
}

func NewChain(futCode string, index *Index) *Chain {
	return &Chain{
		FutCode:   futCode,
		Index:     index,
		contracts: make(map[string]*Contract),
	}
}

func (ch *Chain) String() string {
	return fmt.Sprintf("Chain(%s contracts=%d)", ch.FutCode, len(ch.contracts))
}

func (ch *Chain) Add(c *Contract) {
	ch.contracts[c.Code] = c
}

func (ch *Chain) Contract(code string) (*Contract, bool) {
	c, ok := ch.contracts[code]
	return c, ok
}

func (ch *Chain) Len() int { return len(ch.contracts) }

// Tradable returns the contracts tradable on date, sorted by delist date then
// code so selection rules break ties deterministically.
func (ch *Chain) Tradable(date time.Time) []*Contract {
	var out []*Contract
	for _, c := range ch.contracts {
		if c.IsTradable(date) {
			out = append(out, c)
		}
	}
	sortContracts(out)
	return out
}

// ExpiringAfter returns the tradable contracts whose delist date is strictly
// after the given cutoff, sorted by delist date then code.
func (ch *Chain) ExpiringAfter(date, cutoff time.Time) []*Contract {
	var out []*Contract
	for _, c := range ch.Tradable(date) {
		if c.DelistDate.After(Day(cutoff)) {
			out = append(out, c)
		}
	}
	return out
}

func sortContracts(cs []*Contract) {
	sort.Slice(cs, func(i, j int) bool {
		if !cs[i].DelistDate.Equal(cs[j].DelistDate) {
			return cs[i].DelistDate.Before(cs[j].DelistDate)
		}
		return cs[i].Code < cs[j].Code
	})
}
