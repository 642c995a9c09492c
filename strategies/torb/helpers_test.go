package torb

import (
	"time"

	"github.com/rustyeddy/torb/market"
)

const symbol = "USD_JPY"

// day is a Wednesday.
var day = time.Date(2026, 10, 14, 0, 0, 0, 0, market.JST)

func at(hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func testRange(high, low float64) OpeningRange {
	return OpeningRange{
		Symbol:    symbol,
		Date:      "2026-10-14",
		StartTime: at(9, 0),
		EndTime:   at(10, 0),
		High:      high,
		Low:       low,
		WidthPips: market.ToPips(symbol, high-low),
	}
}

// flatCandles are identical bars with the given high-low span, so ATR equals
// span and there are no strict swing levels.
func flatCandles(n int, mid, span float64) []market.Candle {
	out := make([]market.Candle, n)
	for i := range out {
		out[i] = market.Candle{
			Time:  at(16, 0).Add(time.Duration(i-n) * 15 * time.Minute),
			Open:  mid,
			High:  mid + span/2,
			Low:   mid - span/2,
			Close: mid,
		}
	}
	return out
}

// dailyCandles returns n daily bars whose true range is atrPips each.
func dailyCandles(n int, atrPips float64) []market.Candle {
	span := market.FromPips(symbol, atrPips)
	out := make([]market.Candle, n)
	for i := range out {
		out[i] = market.Candle{
			Time:  day.AddDate(0, 0, i-n),
			Open:  150,
			High:  150 + span,
			Low:   150,
			Close: 150 + span/2,
		}
	}
	return out
}

// rangeCandles covers the 09:00-10:00 window with four M15 bars plus noisy
// bars just outside it.
func rangeCandles(high, low float64) []market.Candle {
	mid := (high + low) / 2
	return []market.Candle{
		{Time: at(8, 45), Open: mid, High: high + 1, Low: low - 1, Close: mid},
		{Time: at(9, 0), Open: mid, High: high, Low: mid, Close: mid},
		{Time: at(9, 15), Open: mid, High: mid, Low: low, Close: mid},
		{Time: at(9, 30), Open: mid, High: mid, Low: mid, Close: mid},
		{Time: at(9, 45), Open: mid, High: mid, Low: mid, Close: mid},
		{Time: at(10, 0), Open: mid, High: high + 1, Low: low - 1, Close: mid},
	}
}
