package sim

import "errors"

// Fatal error kinds surfaced by the account. All of them abort the current
// backtest run; the engine never retries or skips a day because a skipped day
// would break the daily-settlement P&L chain.
var (
	// ErrMissingMarketData: a held contract has no bar on an active trading
	// date (delisted with an open position, or a data gap).
	ErrMissingMarketData = errors.New("missing market data")

	// ErrMarginBreach: available margin went negative beyond the configured
	// tolerance after rebalancing.
	ErrMarginBreach = errors.New("margin breach")

	// ErrInvalidTransition: an account operation was invoked out of the
	// mark -> rebalance -> record order for the current trade date.
	ErrInvalidTransition = errors.New("invalid account transition")
)
