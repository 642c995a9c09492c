package market

import (
	"context"
	"sync"
)

// MemoryFeed is an in-process Feed backed by maps. It serves replays, demos
// and tests; the latest tick per instrument and a candle series per
// (instrument, timeframe) can be swapped at any time.
type MemoryFeed struct {
	mu      sync.RWMutex
	ticks   map[string]Tick
	candles map[string][]Candle
	errs    map[string]error
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{
		ticks:   make(map[string]Tick),
		candles: make(map[string][]Candle),
		errs:    make(map[string]error),
	}
}

func candleKey(instrument, timeframe string) string {
	return instrument + "|" + timeframe
}

func (f *MemoryFeed) SetTick(t Tick) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticks[t.Instrument] = t
}

// SetCandles replaces the series for (instrument, timeframe). The slice is
// copied.
func (f *MemoryFeed) SetCandles(instrument, timeframe string, candles []Candle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.candles[candleKey(instrument, timeframe)] = append([]Candle(nil), candles...)
}

// AppendCandles adds candles to the end of the series.
func (f *MemoryFeed) AppendCandles(instrument, timeframe string, candles ...Candle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := candleKey(instrument, timeframe)
	f.candles[k] = append(f.candles[k], candles...)
}

// SetError makes every call for instrument fail with err until cleared with
// a nil error.
func (f *MemoryFeed) SetError(instrument string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, instrument)
		return
	}
	f.errs[instrument] = err
}

func (f *MemoryFeed) GetPrice(ctx context.Context, instrument string) (Tick, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := f.errs[instrument]; err != nil {
		return Tick{}, err
	}
	t, ok := f.ticks[instrument]
	if !ok {
		return Tick{}, ErrNoPrice
	}
	return t, nil
}

func (f *MemoryFeed) GetHistoricalData(ctx context.Context, instrument, timeframe string, limit int) ([]Candle, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := f.errs[instrument]; err != nil {
		return nil, err
	}
	series := f.candles[candleKey(instrument, timeframe)]
	if limit > 0 && len(series) > limit {
		series = series[len(series)-limit:]
	}
	return append([]Candle(nil), series...), nil
}
