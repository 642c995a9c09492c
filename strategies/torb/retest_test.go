package torb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/torb/market"
	"github.com/rustyeddy/torb/pkg/id"
)

func pendingLong() Signal {
	return Signal{
		ID:          "breakout-1",
		Symbol:      symbol,
		Timestamp:   at(17, 0),
		Direction:   Long,
		EntryPrice:  150.520,
		TargetPrice: 150.5575,
		StopLoss:    150.505,
		Range:       testRange(150.500, 150.450),
		RSI:         60,
		Confidence:  0.9,
		Status:      StatusPending,
		RiskReward:  2.5,
	}
}

func m5(start time.Time, bars ...[4]float64) []market.Candle {
	out := make([]market.Candle, len(bars))
	for i, b := range bars {
		out[i] = market.Candle{
			Time:  start.Add(time.Duration(i) * 5 * time.Minute),
			Open:  b[0],
			High:  b[1],
			Low:   b[2],
			Close: b[3],
		}
	}
	return out
}

// pullback to 150.503 then a close at 150.512
func longRetest() []market.Candle {
	return m5(at(17, 0),
		[4]float64{150.520, 150.522, 150.510, 150.512},
		[4]float64{150.512, 150.513, 150.503, 150.506},
		[4]float64{150.506, 150.514, 150.505, 150.512},
	)
}

func TestConfirm_Long(t *testing.T) {
	t.Parallel()

	c := NewConfirmer(DefaultParams())
	pending := pendingLong()
	now := at(17, 15)

	sig, outcome := c.Confirm(pending, longRetest(), now)
	require.Equal(t, Confirmed, outcome)
	require.NotNil(t, sig)

	assert.NotEqual(t, pending.ID, sig.ID)
	assert.Equal(t, id.NewAt(now)[:10], sig.ID[:10], "ID is stamped with the confirmation time")
	assert.True(t, sig.Timestamp.Equal(now))
	assert.Equal(t, 150.512, sig.EntryPrice)
	assert.Equal(t, StatusActive, sig.Status)
	assert.Equal(t, 1.0, sig.Confidence)
	assert.Equal(t, pending.StopLoss, sig.StopLoss)
	assert.Equal(t, pending.TargetPrice, sig.TargetPrice)
	assert.Equal(t, pending.Range, sig.Range)

	// the breakout value is untouched
	assert.Equal(t, StatusPending, pending.Status)
	assert.Equal(t, 0.9, pending.Confidence)
}

func TestConfirm_ConfidenceBoost(t *testing.T) {
	t.Parallel()

	c := NewConfirmer(DefaultParams())
	pending := pendingLong()
	pending.Confidence = 0.5

	sig, outcome := c.Confirm(pending, longRetest(), at(17, 15))
	require.Equal(t, Confirmed, outcome)
	assert.InDelta(t, 0.65, sig.Confidence, 1e-9)
}

func TestConfirm_Timeout(t *testing.T) {
	t.Parallel()

	c := NewConfirmer(DefaultParams())

	sig, outcome := c.Confirm(pendingLong(), longRetest(), at(17, 31))
	assert.Nil(t, sig)
	assert.Equal(t, TimedOut, outcome)

	// exactly at the timeout is still evaluated
	sig, outcome = c.Confirm(pendingLong(), longRetest(), at(17, 30))
	assert.NotNil(t, sig)
	assert.Equal(t, Confirmed, outcome)
}

func TestConfirm_Waiting(t *testing.T) {
	t.Parallel()

	c := NewConfirmer(DefaultParams())
	now := at(17, 15)

	tests := []struct {
		name    string
		candles []market.Candle
	}{
		{"no candles", nil},
		{"too few candles", longRetest()[:2]},
		{"no pullback touch", m5(at(17, 0),
			[4]float64{150.520, 150.522, 150.510, 150.512},
			[4]float64{150.512, 150.515, 150.508, 150.510},
			[4]float64{150.510, 150.515, 150.506, 150.512},
		)},
		{"no bounce", m5(at(17, 0),
			[4]float64{150.520, 150.522, 150.510, 150.512},
			[4]float64{150.512, 150.513, 150.503, 150.506},
			[4]float64{150.506, 150.507, 150.500, 150.5008},
		)},
		{"touch only outside the window", m5(at(16, 45),
			[4]float64{150.520, 150.522, 150.501, 150.512},
			[4]float64{150.512, 150.515, 150.508, 150.510},
			[4]float64{150.510, 150.515, 150.508, 150.510},
			[4]float64{150.510, 150.515, 150.506, 150.512},
		)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sig, outcome := c.Confirm(pendingLong(), tt.candles, now)
			assert.Nil(t, sig)
			assert.Equal(t, Waiting, outcome)
		})
	}
}

func TestConfirm_Short(t *testing.T) {
	t.Parallel()

	c := NewConfirmer(DefaultParams())
	pending := Signal{
		ID:          "breakout-2",
		Symbol:      symbol,
		Timestamp:   at(21, 0),
		Direction:   Short,
		EntryPrice:  150.430,
		TargetPrice: 150.3925,
		StopLoss:    150.445,
		Range:       testRange(150.500, 150.450),
		Confidence:  0.7,
		Status:      StatusPending,
	}

	candles := m5(at(21, 0),
		[4]float64{150.430, 150.440, 150.428, 150.438},
		[4]float64{150.438, 150.447, 150.436, 150.444},
		[4]float64{150.444, 150.445, 150.438, 150.440},
	)

	sig, outcome := c.Confirm(pending, candles, at(21, 15))
	require.Equal(t, Confirmed, outcome)
	assert.Equal(t, Short, sig.Direction)
	assert.Equal(t, 150.440, sig.EntryPrice)
	assert.InDelta(t, 0.85, sig.Confidence, 1e-9)

	// a close not below low - 1 pip is not a rejection
	candles[2].Close = 150.4495
	sig, outcome = c.Confirm(pending, candles, at(21, 15))
	assert.Nil(t, sig)
	assert.Equal(t, Waiting, outcome)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "confirmed", Confirmed.String())
	assert.Equal(t, "timed_out", TimedOut.String())
	assert.Equal(t, "waiting", Waiting.String())
}

func TestDirection(t *testing.T) {
	assert.Equal(t, 1.0, Long.Sign())
	assert.Equal(t, -1.0, Short.Sign())
	assert.Equal(t, "LONG", Long.String())
	assert.Equal(t, "SHORT", Short.String())
}
