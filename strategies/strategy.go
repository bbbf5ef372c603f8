// Package strategies contains the contract-rolling decision logic. A strategy
// is a pure function of the daily snapshot and the account state: it returns
// target positions and never mutates the account.
package strategies

import (
	"errors"
	"time"

	"github.com/rustyeddy/rollsim/market"
)

// noCutoff selects among all tradable contracts regardless of expiry.
var noCutoff time.Time

// Targets maps contract code to target signed volume. A strategy states an
// explicit zero for every contract it wants closed; an empty map therefore
// always means "nothing held, nothing wanted", never a silent flatten.
type Targets map[string]int

// AccountState is the read-only account view a strategy may consult.
// *sim.Account satisfies it.
type AccountState interface {
	HoldingCodes() []string
	PositionVolume(code string) int
	Equity() float64
}

// Strategy is the single decision operation: snapshot + account -> targets.
type Strategy interface {
	Name() string
	OnBar(snap *market.Snapshot, acct AccountState) (Targets, error)
}

// ErrNoEligibleContract: the selection rule found no tradable contract,
// typically chain exhaustion at the end of the dataset. Distinguished from
// account-level errors so callers can tell a data problem from a leverage
// problem.
var ErrNoEligibleContract = errors.New("no eligible contract")

// Selection rules for picking the contract to hold.
const (
	SelectNearby = "nearby" // soonest to expire among tradable
	SelectVolume = "volume" // highest traded volume today
	SelectOI     = "oi"     // highest open interest today
)
