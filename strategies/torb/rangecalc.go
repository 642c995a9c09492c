package torb

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/torb/indicators"
	"github.com/rustyeddy/torb/market"
)

const dateLayout = "2006-01-02"

// RangeReport is the outcome of computing an opening range before any
// caching. Valid is true only when the window has closed, data was found
// and both filters passed.
type RangeReport struct {
	Range        OpeningRange
	WindowOpen   bool
	Found        bool
	DailyATRPips float64
	MaxWidthPips float64
	VolatilityOK bool
	WidthOK      bool
	Valid        bool
}

// Reason describes why a report is not valid, or "ok".
func (r RangeReport) Reason() string {
	switch {
	case r.WindowOpen:
		return "range window has not closed yet"
	case !r.Found:
		return "no candles in range window"
	case !r.VolatilityOK:
		return fmt.Sprintf("daily ATR %.1f pips outside volatility band", r.DailyATRPips)
	case !r.WidthOK:
		return fmt.Sprintf("width %.1f pips outside band (max %.0f)", r.Range.WidthPips, r.MaxWidthPips)
	}
	return "ok"
}

// RangeCalculator computes and caches opening ranges per symbol and JST
// date. Only valid ranges are cached; a rejected day is recomputed on the
// next lookup.
type RangeCalculator struct {
	src    market.CandleSource
	params Params
	log    *zap.Logger

	mu    sync.Mutex
	cache map[string]OpeningRange
}

func NewRangeCalculator(src market.CandleSource, params Params, log *zap.Logger) *RangeCalculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &RangeCalculator{
		src:    src,
		params: params,
		log:    log,
		cache:  make(map[string]OpeningRange),
	}
}

func rangeKey(symbol, date string) string {
	return symbol + "|" + date
}

// Window returns the [start, end) opening range window for the JST calendar
// date containing day.
func (rc *RangeCalculator) Window(day time.Time) (start, end time.Time) {
	d := day.In(market.JST)
	midnight := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, market.JST)
	return midnight.Add(rc.params.RangeStart), midnight.Add(rc.params.RangeEnd)
}

// Get returns the validated opening range for symbol on the JST date of
// asOf. A nil range with a nil error means no trade is possible yet: the
// window is still open or the day was filtered out. Errors come only from
// the candle source.
func (rc *RangeCalculator) Get(ctx context.Context, symbol string, asOf time.Time) (*OpeningRange, error) {
	if _, end := rc.Window(asOf); asOf.Before(end) {
		return nil, nil
	}

	date := asOf.In(market.JST).Format(dateLayout)
	key := rangeKey(symbol, date)

	rc.mu.Lock()
	if r, ok := rc.cache[key]; ok {
		rc.mu.Unlock()
		return &r, nil
	}
	rc.mu.Unlock()

	rep, err := rc.Compute(ctx, symbol, asOf)
	if err != nil {
		return nil, err
	}
	if !rep.Valid {
		rc.log.Debug("opening range rejected",
			zap.String("symbol", symbol),
			zap.String("date", date),
			zap.String("reason", rep.Reason()),
		)
		return nil, nil
	}

	rc.mu.Lock()
	rc.cache[key] = rep.Range
	rc.mu.Unlock()

	rc.log.Info("opening range",
		zap.String("symbol", symbol),
		zap.String("date", date),
		zap.Float64("high", rep.Range.High),
		zap.Float64("low", rep.Range.Low),
		zap.Float64("width_pips", rep.Range.WidthPips),
		zap.Float64("daily_atr_pips", rep.DailyATRPips),
	)
	r := rep.Range
	return &r, nil
}

// Compute builds the range as seen at asOf and runs both filters without
// touching the cache. Before the window closes it only reports WindowOpen.
func (rc *RangeCalculator) Compute(ctx context.Context, symbol string, asOf time.Time) (RangeReport, error) {
	var rep RangeReport
	start, end := rc.Window(asOf)
	if asOf.Before(end) {
		rep.WindowOpen = true
		return rep, nil
	}

	candles, err := rc.src.GetHistoricalData(ctx, symbol, rc.params.RangeTimeframe, rc.params.RangeCandleLimit)
	if err != nil {
		return rep, fmt.Errorf("range candles %s: %w", symbol, err)
	}

	high := math.Inf(-1)
	low := math.Inf(1)
	for _, c := range candles {
		if c.Time.Before(start) || !c.Time.Before(end) {
			continue
		}
		rep.Found = true
		high = math.Max(high, c.High)
		low = math.Min(low, c.Low)
	}
	if !rep.Found {
		return rep, nil
	}

	rep.Range = OpeningRange{
		Symbol:    symbol,
		Date:      start.Format(dateLayout),
		StartTime: start,
		EndTime:   end,
		High:      high,
		Low:       low,
		WidthPips: market.ToPips(symbol, high-low),
	}

	daily, err := rc.src.GetHistoricalData(ctx, symbol, rc.params.DailyTimeframe, rc.params.DailyCandleLimit)
	if err != nil {
		return rep, fmt.Errorf("daily candles %s: %w", symbol, err)
	}
	rep.DailyATRPips = market.ToPips(symbol, indicators.ATR(daily, rc.params.DailyATRPeriod))
	rep.MaxWidthPips = rc.params.MaxWidthFor(rep.DailyATRPips)
	rep.VolatilityOK = rc.params.VolatilityOK(rep.DailyATRPips)
	rep.WidthOK = rc.params.WidthOK(rep.Range.WidthPips, rep.DailyATRPips)
	rep.Valid = rep.VolatilityOK && rep.WidthOK
	return rep, nil
}

// Invalidate drops every cached range.
func (rc *RangeCalculator) Invalidate() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.cache = make(map[string]OpeningRange)
}
