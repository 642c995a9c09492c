package sim

import (
	"time"

	"github.com/rustyeddy/torb/strategies/torb"
)

type TradeStatus string

const (
	StatusOpen   TradeStatus = "OPEN"
	StatusClosed TradeStatus = "CLOSED"
	// StatusStopped is reserved for administrative halts; the engine never
	// sets it.
	StatusStopped TradeStatus = "STOPPED"
)

type ExitReason string

const (
	ExitTakeProfit ExitReason = "TAKE_PROFIT"
	ExitStopLoss   ExitReason = "STOP_LOSS"
	ExitTimeStop   ExitReason = "TIME_STOP"
	ExitManual     ExitReason = "MANUAL"
)

// VirtualTrade is a paper position opened from a confirmed signal. Its ID is
// the signal's ID.
type VirtualTrade struct {
	ID         string
	Signal     torb.Signal
	Symbol     string
	Direction  torb.Direction
	Units      float64
	EntryTime  time.Time
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	MaxHold    time.Duration

	// account currency value of one pip for one unit, fixed at entry
	PipValuePerUnit float64

	Status     TradeStatus
	ExitTime   time.Time
	ExitPrice  float64
	ExitReason ExitReason
	PnlPips    float64
	PnlAmount  float64

	recordID string
}

func (t *VirtualTrade) IsOpen() bool { return t.Status == StatusOpen }
