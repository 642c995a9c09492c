package sim

import (
	"errors"
	"sync"
	"time"

	"github.com/rustyeddy/torb/journal"
	"github.com/rustyeddy/torb/market"
	"github.com/rustyeddy/torb/strategies/torb"
)

const symbol = "USD_JPY"

// Wednesday 2026-10-14 in Tokyo.
var day = time.Date(2026, 10, 14, 0, 0, 0, 0, market.JST)

func at(hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type testJournal struct {
	mu        sync.Mutex
	records   []journal.TradeRecord
	exits     map[string]journal.TradeExit
	failWrite bool
}

var errJournalDown = errors.New("journal unavailable")

func newTestJournal() *testJournal {
	return &testJournal{exits: make(map[string]journal.TradeExit)}
}

func (j *testJournal) RecordTrade(rec journal.TradeRecord) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.failWrite {
		return "", errJournalDown
	}
	j.records = append(j.records, rec)
	return "rec-" + rec.TradeID, nil
}

func (j *testJournal) UpdateTradeExit(recordID string, exit journal.TradeExit) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.failWrite {
		return errJournalDown
	}
	j.exits[recordID] = exit
	return nil
}

func (j *testJournal) Close() error { return nil }

type testPublisher struct {
	mu      sync.Mutex
	signals []torb.Signal
}

func (p *testPublisher) Publish(s torb.Signal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signals = append(p.signals, s)
}

func (p *testPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.signals)
}

// scenarioFeed holds a 150.450-150.500 opening range on a day with an 80 pip
// daily ATR, followed by quiet 10 pip M15 bars around 150.480.
func scenarioFeed() *market.MemoryFeed {
	f := market.NewMemoryFeed()

	var m15 []market.Candle
	m15 = append(m15,
		market.Candle{Time: at(9, 0), Open: 150.470, High: 150.500, Low: 150.465, Close: 150.490},
		market.Candle{Time: at(9, 15), Open: 150.490, High: 150.495, Low: 150.450, Close: 150.460},
		market.Candle{Time: at(9, 30), Open: 150.460, High: 150.480, Low: 150.455, Close: 150.475},
		market.Candle{Time: at(9, 45), Open: 150.475, High: 150.485, Low: 150.470, Close: 150.480},
	)
	for ts := at(10, 0); ts.Before(at(17, 0)); ts = ts.Add(15 * time.Minute) {
		m15 = append(m15, market.Candle{Time: ts, Open: 150.480, High: 150.485, Low: 150.475, Close: 150.480})
	}
	f.SetCandles(symbol, market.M15, m15)

	span := market.FromPips(symbol, 80)
	var daily []market.Candle
	for i := 20; i > 0; i-- {
		daily = append(daily, market.Candle{
			Time:  day.AddDate(0, 0, -i),
			Open:  150,
			High:  150 + span,
			Low:   150,
			Close: 150 + span/2,
		})
	}
	f.SetCandles(symbol, market.D1, daily)
	return f
}

// retestBars is a pullback to 150.503 followed by a close at 150.512.
func retestBars() []market.Candle {
	return []market.Candle{
		{Time: at(17, 0), Open: 150.520, High: 150.522, Low: 150.510, Close: 150.512},
		{Time: at(17, 5), Open: 150.512, High: 150.513, Low: 150.503, Close: 150.506},
		{Time: at(17, 10), Open: 150.506, High: 150.514, Low: 150.505, Close: 150.512},
	}
}

func setMid(f *market.MemoryFeed, mid float64, ts time.Time) {
	f.SetTick(market.Tick{Instrument: symbol, Time: ts, Bid: mid - 0.001, Ask: mid + 0.001})
}
