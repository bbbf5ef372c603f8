package data

import (
	"fmt"
	"time"

	"github.com/rustyeddy/rollsim/market"
	"github.com/rustyeddy/rollsim/sim"
)

// ChainSource serves per-day snapshots from a loaded chain. Each call builds
// the snapshot fresh; nothing is cached across dates, so a snapshot only ever
// describes its own trading day.
type ChainSource struct {
	chain *market.Chain
}

func NewChainSource(chain *market.Chain) *ChainSource {
	return &ChainSource{chain: chain}
}

// Snapshot assembles the market state for one trading date. A date with no
// index bar is missing market data; contracts without a bar that day are
// simply absent from the snapshot.
func (s *ChainSource) Snapshot(date time.Time) (*market.Snapshot, error) {
	date = market.Day(date)
	ib, ok := s.chain.Index.Bar(date)
	if !ok {
		return nil, fmt.Errorf("no index bar for %s on %s: %w",
			s.chain.Index.Code, date.Format(time.DateOnly), sim.ErrMissingMarketData)
	}

	bars := make(map[string]market.FuturesBar)
	for _, c := range s.chain.Tradable(date) {
		if b, ok := c.Bar(date); ok {
			bars[c.Code] = b
		}
	}
	return &market.Snapshot{Date: date, IndexBar: ib, Contracts: bars}, nil
}
