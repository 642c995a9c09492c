package indicators

import "github.com/rustyeddy/torb/market"

// Swings holds the most recent swing high and swing low found by
// FindSwingLevels. HasHigh/HasLow report which of the two were found.
type Swings struct {
	High    float64
	Low     float64
	HasHigh bool
	HasLow  bool
}

// FindSwingLevels scans backward for the most recent candle whose high is
// strictly above the highs of lookback candles on each side (swing high) and,
// symmetrically, the most recent swing low. The bool is false when the
// history is shorter than 2*lookback+1 candles.
func FindSwingLevels(candles []market.Candle, lookback int) (Swings, bool) {
	var s Swings
	if lookback <= 0 || len(candles) < 2*lookback+1 {
		return s, false
	}

	for i := len(candles) - 1 - lookback; i >= lookback; i-- {
		if !s.HasHigh && isSwingHigh(candles, i, lookback) {
			s.High = candles[i].High
			s.HasHigh = true
		}
		if !s.HasLow && isSwingLow(candles, i, lookback) {
			s.Low = candles[i].Low
			s.HasLow = true
		}
		if s.HasHigh && s.HasLow {
			break
		}
	}
	return s, true
}

func isSwingHigh(candles []market.Candle, i, lookback int) bool {
	for j := i - lookback; j <= i+lookback; j++ {
		if j != i && candles[j].High >= candles[i].High {
			return false
		}
	}
	return true
}

func isSwingLow(candles []market.Candle, i, lookback int) bool {
	for j := i - lookback; j <= i+lookback; j++ {
		if j != i && candles[j].Low <= candles[i].Low {
			return false
		}
	}
	return true
}
