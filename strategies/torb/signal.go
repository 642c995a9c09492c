// Package torb implements the Tokyo opening range breakout strategy: the
// opening range calculator, the breakout detector and the retest confirmer.
// Signals and ranges are immutable values; a confirmed retest produces a new
// Signal instead of updating the breakout it came from.
package torb

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/torb/market"
)

// Direction is LONG or SHORT. Its value is the sign applied to price
// distances, so mirrored long/short arithmetic collapses to one expression.
type Direction int

const (
	Long  Direction = 1
	Short Direction = -1
)

func (d Direction) Sign() float64 { return float64(d) }

func (d Direction) String() string {
	switch d {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// OpeningRange is the high/low band of the morning window for one symbol on
// one JST calendar date.
type OpeningRange struct {
	Symbol    string
	Date      string    // YYYY-MM-DD in JST
	StartTime time.Time
	EndTime   time.Time
	High      float64
	Low       float64
	WidthPips float64
}

type Signal struct {
	ID          string
	Symbol      string
	Timestamp   time.Time
	Direction   Direction
	EntryPrice  float64
	TargetPrice float64
	StopLoss    float64
	Range       OpeningRange
	RSI         float64
	Confidence  float64
	Status      Status
	ATR         float64
	Session     market.SessionName
	RiskReward  float64
}

// StopPips is the entry to stop distance in pips, signed so that a stop on
// the wrong side of the entry is negative.
func (s Signal) StopPips() float64 {
	return market.ToPips(s.Symbol, s.Direction.Sign()*(s.EntryPrice-s.StopLoss))
}

func (s Signal) String() string {
	return fmt.Sprintf("%s %s entry=%.5f sl=%.5f tp=%.5f conf=%.2f %s",
		s.Symbol, s.Direction, s.EntryPrice, s.StopLoss, s.TargetPrice, s.Confidence, s.Status)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
