package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rustyeddy/torb/pkg/id"
)

var csvHeader = []string{
	"event", "record_id", "trade_id", "instrument", "direction", "units",
	"entry_price", "stop_loss", "take_profit", "open_time",
	"exit_price", "exit_time", "exit_reason", "pnl_pips", "pnl_amount",
}

// CSV appends one row per open and one per close. Record IDs are ULIDs so a
// close row can be joined to its open row.
type CSV struct {
	mu sync.Mutex
	w  *csv.Writer
	f  *os.File
}

func NewCSV(path string) (*CSV, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			_ = f.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	return &CSV{w: w, f: f}, nil
}

func (j *CSV) write(row []string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.w.Write(row); err != nil {
		return err
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) RecordTrade(t TradeRecord) (string, error) {
	recordID := id.New()
	err := j.write([]string{
		"OPEN",
		recordID,
		t.TradeID,
		t.Instrument,
		t.Direction,
		f(t.Units),
		f(t.EntryPrice),
		f(t.StopLoss),
		f(t.TakeProfit),
		t.OpenTime.UTC().Format(time.RFC3339),
		"", "", "", "", "",
	})
	if err != nil {
		return "", fmt.Errorf("record trade %s: %w", t.TradeID, err)
	}
	return recordID, nil
}

func (j *CSV) UpdateTradeExit(recordID string, e TradeExit) error {
	if recordID == "" {
		return fmt.Errorf("%w: empty record id", ErrNotFound)
	}
	return j.write([]string{
		"CLOSE",
		recordID,
		"", "", "", "", "", "", "", "",
		f(e.ExitPrice),
		e.ExitTime.UTC().Format(time.RFC3339),
		e.Reason,
		f(e.PnlPips),
		f(e.PnlAmount),
	})
}

func (j *CSV) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return err
	}
	return j.f.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
