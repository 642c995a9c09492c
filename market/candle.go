package market

import "time"

// Candle represents OHLC (Open, High, Low, Close) candlestick data
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64 // optional
}

// Closes returns the close prices of candles in order.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Timeframes understood by the candle sources. The strings match OANDA
// granularities so adapters can pass them through.
const (
	M1  = "M1"
	M5  = "M5"
	M15 = "M15"
	H1  = "H1"
	D1  = "D"
)
