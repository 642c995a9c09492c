package torb

import (
	"time"

	"github.com/rustyeddy/torb/market"
)

// Params holds every threshold the strategy uses. Pip values are converted
// with the symbol's pip size.
type Params struct {
	// Opening range window as offsets from JST midnight, [RangeStart, RangeEnd).
	RangeStart       time.Duration `json:"range-start"`
	RangeEnd         time.Duration `json:"range-end"`
	RangeTimeframe   string        `json:"range-timeframe"`
	RangeCandleLimit int           `json:"range-candle-limit"`

	DailyTimeframe   string `json:"daily-timeframe"`
	DailyCandleLimit int    `json:"daily-candle-limit"`
	DailyATRPeriod   int    `json:"daily-atr-period"`

	MinDailyATRPips  float64 `json:"min-daily-atr-pips"`  // 70
	MaxDailyATRPips  float64 `json:"max-daily-atr-pips"`  // 150
	MinWidthPips     float64 `json:"min-width-pips"`      // 30
	MaxWidthPips     float64 `json:"max-width-pips"`      // 55
	WideMaxWidthPips float64 `json:"wide-max-width-pips"` // 70
	WideATRPips      float64 `json:"wide-atr-pips"`       // 120

	RecentTimeframe   string `json:"recent-timeframe"`
	RecentCandleLimit int    `json:"recent-candle-limit"`
	ATRPeriod         int    `json:"atr-period"`
	RSIPeriod         int    `json:"rsi-period"`
	SwingLookback     int    `json:"swing-lookback"`

	BreakoutBufferPips float64 `json:"breakout-buffer-pips"`
	LongRSIMin         float64 `json:"long-rsi-min"`
	ShortRSIMax        float64 `json:"short-rsi-max"`
	RSIStrengthSpan    float64 `json:"rsi-strength-span"`

	StructuralStopMaxATR float64 `json:"structural-stop-max-atr"`
	ATRStopMultiple      float64 `json:"atr-stop-multiple"`
	MinStopPips          float64 `json:"min-stop-pips"`
	MaxStopPips          float64 `json:"max-stop-pips"`

	MinConfidence float64 `json:"min-confidence"`
	MaxConfidence float64 `json:"max-confidence"`

	RetestTimeframe   string        `json:"retest-timeframe"`
	RetestCandleLimit int           `json:"retest-candle-limit"`
	RetestWindow      int           `json:"retest-window"`
	RetestTimeout     time.Duration `json:"retest-timeout"`
	RetestTouchPips   float64       `json:"retest-touch-pips"`
	RetestBouncePips  float64       `json:"retest-bounce-pips"`
	RetestBoost       float64       `json:"retest-boost"`
}

func DefaultParams() Params {
	return Params{
		RangeStart:       9 * time.Hour,
		RangeEnd:         10 * time.Hour,
		RangeTimeframe:   market.M15,
		RangeCandleLimit: 96,

		DailyTimeframe:   market.D1,
		DailyCandleLimit: 20,
		DailyATRPeriod:   14,

		MinDailyATRPips:  70,
		MaxDailyATRPips:  150,
		MinWidthPips:     30,
		MaxWidthPips:     55,
		WideMaxWidthPips: 70,
		WideATRPips:      120,

		RecentTimeframe:   market.M15,
		RecentCandleLimit: 50,
		ATRPeriod:         14,
		RSIPeriod:         14,
		SwingLookback:     3,

		BreakoutBufferPips: 1.5,
		LongRSIMin:         45,
		ShortRSIMax:        55,
		RSIStrengthSpan:    20,

		StructuralStopMaxATR: 2,
		ATRStopMultiple:      1.5,
		MinStopPips:          15,
		MaxStopPips:          60,

		MinConfidence: 0.5,
		MaxConfidence: 0.95,

		RetestTimeframe:   market.M5,
		RetestCandleLimit: 6,
		RetestWindow:      3,
		RetestTimeout:     30 * time.Minute,
		RetestTouchPips:   3,
		RetestBouncePips:  1,
		RetestBoost:       0.15,
	}
}

// VolatilityOK reports whether a daily ATR (in pips) is tradeable.
func (p Params) VolatilityOK(atrPips float64) bool {
	return atrPips >= p.MinDailyATRPips && atrPips <= p.MaxDailyATRPips
}

// MaxWidthFor is the widest acceptable opening range for a daily ATR.
func (p Params) MaxWidthFor(atrPips float64) float64 {
	if atrPips > p.WideATRPips {
		return p.WideMaxWidthPips
	}
	return p.MaxWidthPips
}

// WidthOK applies the width filter for the given daily ATR.
func (p Params) WidthOK(widthPips, atrPips float64) bool {
	return widthPips >= p.MinWidthPips && widthPips <= p.MaxWidthFor(atrPips)
}
