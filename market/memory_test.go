package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFeed_Prices(t *testing.T) {
	t.Parallel()

	f := NewMemoryFeed()
	ctx := context.Background()

	_, err := f.GetPrice(ctx, "USD_JPY")
	assert.ErrorIs(t, err, ErrNoPrice)

	tick := Tick{Instrument: "USD_JPY", Bid: 150.1, Ask: 150.3, Time: time.Now()}
	f.SetTick(tick)

	got, err := f.GetPrice(ctx, "USD_JPY")
	require.NoError(t, err)
	assert.Equal(t, tick, got)
	assert.InDelta(t, 150.2, got.Mid(), 1e-9)
	assert.InDelta(t, 0.2, got.Spread(), 1e-9)

	boom := errors.New("down")
	f.SetError("USD_JPY", boom)
	_, err = f.GetPrice(ctx, "USD_JPY")
	assert.ErrorIs(t, err, boom)

	f.SetError("USD_JPY", nil)
	_, err = f.GetPrice(ctx, "USD_JPY")
	assert.NoError(t, err)
}

func TestMemoryFeed_CandlesLimit(t *testing.T) {
	t.Parallel()

	f := NewMemoryFeed()
	ctx := context.Background()

	got, err := f.GetHistoricalData(ctx, "USD_JPY", M5, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	var cs []Candle
	for i := 0; i < 5; i++ {
		cs = append(cs, Candle{Time: base.Add(time.Duration(i) * 5 * time.Minute), Close: float64(i)})
	}
	f.SetCandles("USD_JPY", M5, cs)
	f.AppendCandles("USD_JPY", M5, Candle{Time: base.Add(25 * time.Minute), Close: 5})

	got, err = f.GetHistoricalData(ctx, "USD_JPY", M5, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4, 5}, Closes(got))

	got, err = f.GetHistoricalData(ctx, "USD_JPY", M5, 0)
	require.NoError(t, err)
	assert.Len(t, got, 6)
}
