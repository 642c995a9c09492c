package torb

import (
	"math"
	"time"

	"github.com/rustyeddy/torb/indicators"
	"github.com/rustyeddy/torb/market"
	"github.com/rustyeddy/torb/pkg/id"
	"github.com/rustyeddy/torb/risk"
)

// BreakoutInput is everything the detector looks at for one evaluation.
type BreakoutInput struct {
	Symbol  string
	Range   OpeningRange
	Price   float64
	RSI     float64
	Candles []market.Candle // recent window for ATR and swing levels
	Time    time.Time
}

type Detector struct {
	params Params
	newID  func(time.Time) string
}

func NewDetector(params Params) *Detector {
	return &Detector{params: params, newID: id.NewAt}
}

// Detect returns a PENDING signal when price has cleared the range by the
// breakout buffer and the RSI gate agrees, otherwise nil.
func (d *Detector) Detect(in BreakoutInput) *Signal {
	p := d.params
	r := in.Range

	// The calculator already filtered widths; this guard keeps the detector
	// safe when handed a range from elsewhere.
	if r.WidthPips < p.MinWidthPips || r.WidthPips > p.MaxWidthPips {
		return nil
	}

	buffer := market.FromPips(in.Symbol, p.BreakoutBufferPips)
	var dir Direction
	switch {
	case in.Price > r.High+buffer:
		dir = Long
	case in.Price < r.Low-buffer:
		dir = Short
	default:
		return nil
	}

	if dir == Long && in.RSI < p.LongRSIMin {
		return nil
	}
	if dir == Short && in.RSI > p.ShortRSIMax {
		return nil
	}

	atr := indicators.ATR(in.Candles, p.ATRPeriod)
	stop := d.stopLoss(in, dir, atr)
	sign := dir.Sign()
	stopDist := math.Abs(in.Price - stop)

	session := market.ClassifySession(in.Time)
	target := in.Price + sign*stopDist*session.TPMultiplier
	rr := risk.RR(in.Price, stop, target)

	return &Signal{
		ID:          d.newID(in.Time),
		Symbol:      in.Symbol,
		Timestamp:   in.Time,
		Direction:   dir,
		EntryPrice:  in.Price,
		TargetPrice: target,
		StopLoss:    stop,
		Range:       r,
		RSI:         in.RSI,
		Confidence:  d.confidence(in, dir, atr, rr),
		Status:      StatusPending,
		ATR:         atr,
		Session:     session.Name,
		RiskReward:  rr,
	}
}

// stopLoss prefers the most recent swing on the protective side when it is
// within StructuralStopMaxATR ATRs, else falls back to ATRStopMultiple ATRs.
// The distance is then clamped to [MinStopPips, MaxStopPips].
func (d *Detector) stopLoss(in BreakoutInput, dir Direction, atr float64) float64 {
	p := d.params
	sign := dir.Sign()
	stop := in.Price - sign*p.ATRStopMultiple*atr

	if swings, ok := indicators.FindSwingLevels(in.Candles, p.SwingLookback); ok {
		level, has := swings.Low, swings.HasLow
		if dir == Short {
			level, has = swings.High, swings.HasHigh
		}
		dist := sign * (in.Price - level)
		if has && dist > 0 && dist <= p.StructuralStopMaxATR*atr {
			stop = level
		}
	}

	pips := clamp(market.ToPips(in.Symbol, math.Abs(in.Price-stop)), p.MinStopPips, p.MaxStopPips)
	return in.Price - sign*market.FromPips(in.Symbol, pips)
}

// confidence averages risk/reward, ATR strength and RSI strength and clamps
// the result to [MinConfidence, MaxConfidence].
func (d *Detector) confidence(in BreakoutInput, dir Direction, atr, rr float64) float64 {
	p := d.params

	atrStrength := 0.0
	if w := in.Range.WidthPips * market.PipSize(in.Symbol); w > 0 {
		atrStrength = atr / w
	}

	rsiDist := in.RSI - p.LongRSIMin
	if dir == Short {
		rsiDist = p.ShortRSIMax - in.RSI
	}
	rsiStrength := 0.0
	if p.RSIStrengthSpan > 0 {
		rsiStrength = clamp(rsiDist/p.RSIStrengthSpan, 0, 1)
	}

	return clamp((rr+atrStrength+rsiStrength)/3, p.MinConfidence, p.MaxConfidence)
}
