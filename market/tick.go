package market

import (
	"context"
	"errors"
	"time"
)

var ErrNoPrice = errors.New("price not found")

// PriceSource returns the latest bid/ask for an instrument. Implementations
// may fail with connectivity errors; callers treat that as "try again later".
type PriceSource interface {
	GetPrice(ctx context.Context, instrument string) (Tick, error)
}

// CandleSource returns up to limit candles, oldest first. An empty slice is a
// valid "no data yet" answer and not an error.
type CandleSource interface {
	GetHistoricalData(ctx context.Context, instrument, timeframe string, limit int) ([]Candle, error)
}

// Feed is the price/candle provider capability consumed by the engine.
type Feed interface {
	PriceSource
	CandleSource
}

type Tick struct {
	Instrument string
	Time       time.Time
	Bid        float64
	Ask        float64
}

func (t Tick) Mid() float64 {
	if t.Bid == 0 && t.Ask == 0 {
		return 0
	}
	return (t.Bid + t.Ask) / 2
}

func (t Tick) Spread() float64 {
	return t.Ask - t.Bid
}
