package market

import "time"

// JST is the trading region's local offset. Japan has no daylight saving so
// a fixed zone avoids depending on the tz database.
var JST = time.FixedZone("JST", 9*60*60)

type SessionName string

const (
	SessionTokyo   SessionName = "tokyo"
	SessionLondon  SessionName = "london"
	SessionNYEarly SessionName = "ny_early"
	SessionOff     SessionName = "off"
)

// Session is a trading session and the take-profit multiplier used while it
// is active.
type Session struct {
	Name         SessionName
	TPMultiplier float64
	// JST hours, [StartHour, EndHour). EndHour may wrap past midnight.
	StartHour int
	EndHour   int
}

// Sessions are checked in order; the first match wins, so london owns the
// 22:00-24:00 overlap with ny_early.
var Sessions = []Session{
	{Name: SessionTokyo, TPMultiplier: 1.5, StartHour: 9, EndHour: 15},
	{Name: SessionLondon, TPMultiplier: 2.5, StartHour: 16, EndHour: 24},
	{Name: SessionNYEarly, TPMultiplier: 2.0, StartHour: 22, EndHour: 2},
}

var offSession = Session{Name: SessionOff, TPMultiplier: 1.5}

func (s Session) contains(hour int) bool {
	if s.StartHour <= s.EndHour {
		return hour >= s.StartHour && hour < s.EndHour
	}
	return hour >= s.StartHour || hour < s.EndHour
}

// ClassifySession maps t (any zone) to the session active at that JST hour.
func ClassifySession(t time.Time) Session {
	hour := t.In(JST).Hour()
	for _, s := range Sessions {
		if s.contains(hour) {
			return s
		}
	}
	return offSession
}
