package torb

import (
	"math"
	"time"

	"github.com/rustyeddy/torb/market"
	"github.com/rustyeddy/torb/pkg/id"
	"github.com/rustyeddy/torb/risk"
)

// Outcome of a retest evaluation. The pending breakout is dropped on
// Confirmed and TimedOut and kept on Waiting.
type Outcome int

const (
	Waiting Outcome = iota
	Confirmed
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case TimedOut:
		return "timed_out"
	default:
		return "waiting"
	}
}

// eps keeps touches at exactly the pip threshold inside the band despite
// float rounding.
const eps = 1e-9

type Confirmer struct {
	params Params
	newID  func(time.Time) string
}

func NewConfirmer(params Params) *Confirmer {
	return &Confirmer{params: params, newID: id.NewAt}
}

// Confirm checks the last RetestWindow candles for a pullback to the broken
// level followed by a close beyond it. On success it returns a new ACTIVE
// signal entered at the latest close.
func (c *Confirmer) Confirm(pending Signal, candles []market.Candle, now time.Time) (*Signal, Outcome) {
	p := c.params

	if now.Sub(pending.Timestamp) > p.RetestTimeout {
		return nil, TimedOut
	}
	if len(candles) < p.RetestWindow || p.RetestWindow <= 0 {
		return nil, Waiting
	}

	window := candles[len(candles)-p.RetestWindow:]
	latest := window[len(window)-1]
	sign := pending.Direction.Sign()
	touch := market.FromPips(pending.Symbol, p.RetestTouchPips)
	bounce := market.FromPips(pending.Symbol, p.RetestBouncePips)

	level := pending.Range.High
	if pending.Direction == Short {
		level = pending.Range.Low
	}

	touched := false
	for _, k := range window {
		// pullback side of the candle: low for longs, high for shorts
		px := k.Low
		if pending.Direction == Short {
			px = k.High
		}
		if math.Abs(px-level) <= touch+eps {
			touched = true
			break
		}
	}
	if !touched {
		return nil, Waiting
	}
	if sign*(latest.Close-level) <= bounce {
		return nil, Waiting
	}

	sig := pending
	sig.ID = c.newID(now)
	sig.Timestamp = now
	sig.EntryPrice = latest.Close
	sig.Confidence = math.Min(pending.Confidence+p.RetestBoost, 1.0)
	sig.Status = StatusActive
	sig.RiskReward = risk.RR(sig.EntryPrice, sig.StopLoss, sig.TargetPrice)
	return &sig, Confirmed
}
