package sim

import (
	"time"

	"github.com/rustyeddy/torb/market"
)

// Window is a [StartHour, EndHour) range of JST hours.
type Window struct {
	StartHour int `json:"start" yaml:"start"`
	EndHour   int `json:"end" yaml:"end"`
}

func (w Window) contains(hour int) bool {
	if w.StartHour <= w.EndHour {
		return hour >= w.StartHour && hour < w.EndHour
	}
	return hour >= w.StartHour || hour < w.EndHour
}

// TradingGate decides when new entries may be evaluated. Days are checked in
// UTC and hours in JST.
//
// NOTE: the default windows (16-18 and 21-23 JST) do not line up with the
// session table used for take-profit scaling. They are kept as-is until
// someone decides which one is intended.
type TradingGate struct {
	Days    []time.Weekday
	Windows []Window
}

func DefaultGate() TradingGate {
	return TradingGate{
		Days: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		Windows: []Window{
			{StartHour: 16, EndHour: 18},
			{StartHour: 21, EndHour: 23},
		},
	}
}

// Allows reports whether t is inside the gate. An empty Days or Windows list
// does not restrict that dimension.
func (g TradingGate) Allows(t time.Time) bool {
	if len(g.Days) > 0 {
		wd := t.UTC().Weekday()
		ok := false
		for _, d := range g.Days {
			if d == wd {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	if len(g.Windows) == 0 {
		return true
	}
	hour := t.In(market.JST).Hour()
	for _, w := range g.Windows {
		if w.contains(hour) {
			return true
		}
	}
	return false
}
