package market

import (
	"fmt"
	"sort"
	"time"
)

// Snapshot is the cross-sectional market view for exactly one trade date: the
// index bar plus every tradable contract's bar. It is valid for that date
// only; consumers must not cache it across dates.
type Snapshot struct {
	Date      time.Time
	IndexBar  IndexBar
	Contracts map[string]FuturesBar
}

func (s *Snapshot) String() string {
	return fmt.Sprintf("Snapshot(%s index=%.2f contracts=%d)",
		s.Date.Format("2006-01-02"), s.IndexBar.Close, len(s.Contracts))
}

func (s *Snapshot) Bar(code string) (FuturesBar, bool) {
	b, ok := s.Contracts[code]
	return b, ok
}

func (s *Snapshot) Settle(code string) (float64, bool) {
	b, ok := s.Contracts[code]
	if !ok {
		return 0, false
	}
	return b.Settle, true
}

func (s *Snapshot) IndexClose() float64 { return s.IndexBar.Close }

// Basis returns (futures settle − index close) / index close for a contract.
// Negative basis means the future trades at a discount to spot.
func (s *Snapshot) Basis(code string) (float64, bool) {
	f, ok := s.Settle(code)
	if !ok || f <= 0 {
		return 0, false
	}
	spot := s.IndexBar.Close
	if spot <= 0 {
		return 0, false
	}
	return (f - spot) / spot, true
}

// Codes returns the contract codes present in the snapshot, sorted.
func (s *Snapshot) Codes() []string {
	codes := make([]string, 0, len(s.Contracts))
	for code := range s.Contracts {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// SnapshotSource serves one snapshot per trading date. Implementations must
// be total over the calendar they advertise: a date with no index bar is an
// error, not an empty snapshot.
type SnapshotSource interface {
	Snapshot(date time.Time) (*Snapshot, error)
}
