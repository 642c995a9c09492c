// Package journal persists virtual trades. The engine writes through the
// Journal interface and never depends on the write succeeding; the SQLite
// journal additionally answers queries for the CLI.
package journal

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("trade record not found")

// TradeRecord is written when a virtual trade opens.
type TradeRecord struct {
	TradeID    string
	Instrument string
	Direction  string
	Units      float64
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	OpenTime   time.Time
	Confidence float64
	Session    string
	RangeHigh  float64
	RangeLow   float64
}

// TradeExit is written when the trade closes.
type TradeExit struct {
	ExitPrice float64
	ExitTime  time.Time
	Reason    string
	PnlPips   float64
	PnlAmount float64
}

// Trade is a stored trade as read back from a journal.
type Trade struct {
	RecordID string
	TradeRecord
	TradeExit
	Closed bool
}

type Journal interface {
	// RecordTrade stores an opened trade and returns the journal's record ID
	// for it.
	RecordTrade(TradeRecord) (string, error)
	UpdateTradeExit(recordID string, exit TradeExit) error
	Close() error
}

// Reader is implemented by journals that can be queried.
type Reader interface {
	GetTrade(tradeID string) (Trade, error)
	ListTradesClosedBetween(start, end time.Time) ([]Trade, error)
	OpenTrades() ([]Trade, error)
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) (string, error) { return "", nil }
func (Nop) UpdateTradeExit(string, TradeExit) error { return nil }
func (Nop) Close() error { return nil }
