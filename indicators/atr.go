package indicators

import (
	"math"

	"github.com/rustyeddy/torb/market"
)

// trueRange of current given the previous candle.
func trueRange(current, previous market.Candle) float64 {
	highLow := current.High - current.Low
	highClose := math.Abs(current.High - previous.Close)
	lowClose := math.Abs(current.Low - previous.Close)

	return math.Max(highLow, math.Max(highClose, lowClose))
}

// TrueRanges returns one true range per candle. The first candle has no
// previous close so its range is high-low.
func TrueRanges(candles []market.Candle) []float64 {
	if len(candles) == 0 {
		return nil
	}
	out := make([]float64, len(candles))
	out[0] = candles[0].High - candles[0].Low
	for i := 1; i < len(candles); i++ {
		out[i] = trueRange(candles[i], candles[i-1])
	}
	return out
}

// ATR is the simple mean of the last period true ranges. It returns 0 when
// fewer than max(period, 2) candles are available.
func ATR(candles []market.Candle, period int) float64 {
	if period <= 0 {
		return 0
	}
	if len(candles) < period || len(candles) < 2 {
		return 0
	}

	trs := TrueRanges(candles)
	sum := 0.0
	for _, tr := range trs[len(trs)-period:] {
		sum += tr
	}
	return sum / float64(period)
}
