package risk

import "time"

// Policy holds the circuit breakers applied before a new trade is opened.
// A zero value disables the corresponding breaker, so the zero Policy
// allows everything.
type Policy struct {
	// Stop opening after this many losing trades in a row (same JST day).
	MaxConsecutiveLosses int `json:"max-consecutive-losses" yaml:"max_consecutive_losses"`

	// Stop opening once the day's realized loss reaches this fraction of
	// equity, e.g. 0.05.
	MaxDailyLossPct float64 `json:"max-daily-loss-pct" yaml:"max_daily_loss_pct"`
}

// State is the engine's running tally that the policy is evaluated against.
type State struct {
	Now               time.Time
	Equity            float64
	ConsecutiveLosses int
	DayRealized       float64 // realized P/L for the day in account currency
}
