package torb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/torb/market"
)

func newRangeFeed(high, low, atrPips float64) *market.MemoryFeed {
	f := market.NewMemoryFeed()
	f.SetCandles(symbol, market.M15, rangeCandles(high, low))
	f.SetCandles(symbol, market.D1, dailyCandles(20, atrPips))
	return f
}

func TestRangeCalculator_Valid(t *testing.T) {
	t.Parallel()

	feed := newRangeFeed(150.500, 150.450, 80)
	rc := NewRangeCalculator(feed, DefaultParams(), nil)

	r, err := rc.Get(context.Background(), symbol, at(17, 0))
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.Equal(t, 150.500, r.High)
	assert.Equal(t, 150.450, r.Low)
	assert.InDelta(t, 50.0, r.WidthPips, 1e-6)
	assert.Equal(t, "2026-10-14", r.Date)
	assert.True(t, r.StartTime.Equal(at(9, 0)))
	assert.True(t, r.EndTime.Equal(at(10, 0)))
	assert.GreaterOrEqual(t, r.High, r.Low)
}

func TestRangeCalculator_CachesValidRange(t *testing.T) {
	t.Parallel()

	feed := newRangeFeed(150.500, 150.450, 80)
	rc := NewRangeCalculator(feed, DefaultParams(), nil)
	ctx := context.Background()

	first, err := rc.Get(ctx, symbol, at(11, 0))
	require.NoError(t, err)
	require.NotNil(t, first)

	// new data must not change a cached range
	feed.SetCandles(symbol, market.M15, rangeCandles(151.0, 150.0))
	second, err := rc.Get(ctx, symbol, at(18, 0))
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)

	rc.Invalidate()
	third, err := rc.Get(ctx, symbol, at(18, 0))
	require.NoError(t, err)
	assert.Nil(t, third, "100 pip range fails the width filter")
}

func TestRangeCalculator_WaitsForWindowClose(t *testing.T) {
	t.Parallel()

	feed := market.NewMemoryFeed()
	feed.SetCandles(symbol, market.D1, dailyCandles(20, 80))
	feed.SetCandles(symbol, market.M15, []market.Candle{
		{Time: at(9, 0), Open: 150.420, High: 150.435, Low: 150.410, Close: 150.420},
		{Time: at(9, 15), Open: 150.420, High: 150.430, Low: 150.400, Close: 150.415},
	})
	rc := NewRangeCalculator(feed, DefaultParams(), nil)
	ctx := context.Background()

	// 35 pips so far would pass both filters
	r, err := rc.Get(ctx, symbol, at(9, 20))
	require.NoError(t, err)
	assert.Nil(t, r, "no range while the window is open")

	rep, err := rc.Compute(ctx, symbol, at(9, 59))
	require.NoError(t, err)
	assert.True(t, rep.WindowOpen)
	assert.False(t, rep.Valid)
	assert.Equal(t, "range window has not closed yet", rep.Reason())

	feed.AppendCandles(symbol, market.M15,
		market.Candle{Time: at(9, 30), Open: 150.415, High: 150.450, Low: 150.405, Close: 150.440},
		market.Candle{Time: at(9, 45), Open: 150.440, High: 150.445, Low: 150.425, Close: 150.430},
	)

	r, err = rc.Get(ctx, symbol, at(17, 0))
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, 150.450, r.High)
	assert.Equal(t, 150.400, r.Low)
	assert.InDelta(t, 50.0, r.WidthPips, 1e-6)

	// exactly at the window end the range is final
	rep, err = rc.Compute(ctx, symbol, at(10, 0))
	require.NoError(t, err)
	assert.False(t, rep.WindowOpen)
	assert.True(t, rep.Valid)
}

func TestRangeCalculator_RejectionIsNotCached(t *testing.T) {
	t.Parallel()

	feed := newRangeFeed(150.500, 150.450, 60)
	rc := NewRangeCalculator(feed, DefaultParams(), nil)
	ctx := context.Background()

	r, err := rc.Get(ctx, symbol, at(11, 0))
	require.NoError(t, err)
	assert.Nil(t, r)

	feed.SetCandles(symbol, market.D1, dailyCandles(20, 90))
	r, err = rc.Get(ctx, symbol, at(11, 0))
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestRangeCalculator_Filters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		width   float64
		atrPips float64
		valid   bool
	}{
		{"low volatility", 50, 69, false},
		{"volatility lower bound", 50, 70, true},
		{"volatility upper bound", 50, 150, true},
		{"high volatility", 50, 151, false},
		{"too narrow", 29, 80, false},
		{"min width", 30, 80, true},
		{"max width", 55, 80, true},
		{"too wide", 56, 80, false},
		{"wide allowed with high atr", 70, 121, true},
		{"atr at 120 keeps normal max", 60, 120, false},
		{"too wide even with high atr", 71, 130, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			low := 150.000
			high := low + market.FromPips(symbol, tt.width)
			rc := NewRangeCalculator(newRangeFeed(high, low, tt.atrPips), DefaultParams(), nil)

			rep, err := rc.Compute(context.Background(), symbol, at(12, 0))
			require.NoError(t, err)
			assert.True(t, rep.Found)
			assert.Equal(t, tt.valid, rep.Valid, rep.Reason())

			r, err := rc.Get(context.Background(), symbol, at(12, 0))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, r != nil)
		})
	}
}

func TestRangeCalculator_NoData(t *testing.T) {
	t.Parallel()

	feed := market.NewMemoryFeed()
	rc := NewRangeCalculator(feed, DefaultParams(), nil)

	r, err := rc.Get(context.Background(), symbol, at(12, 0))
	require.NoError(t, err)
	assert.Nil(t, r)

	rep, err := rc.Compute(context.Background(), symbol, at(12, 0))
	require.NoError(t, err)
	assert.False(t, rep.Found)
	assert.Equal(t, "no candles in range window", rep.Reason())
}

func TestRangeCalculator_SourceError(t *testing.T) {
	t.Parallel()

	feed := newRangeFeed(150.500, 150.450, 80)
	boom := errors.New("connection refused")
	feed.SetError(symbol, boom)
	rc := NewRangeCalculator(feed, DefaultParams(), nil)

	r, err := rc.Get(context.Background(), symbol, at(12, 0))
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, r)
}

func TestRangeCalculator_WindowUsesJSTDate(t *testing.T) {
	t.Parallel()

	rc := NewRangeCalculator(market.NewMemoryFeed(), DefaultParams(), nil)

	// 2026-10-13 20:00 UTC is already 2026-10-14 in Tokyo
	start, end := rc.Window(at(5, 0).UTC())
	assert.True(t, start.Equal(at(9, 0)))
	assert.True(t, end.Equal(at(10, 0)))
}
