package journal

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) (string, error) {
	res, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, instrument, direction, units, entry_price, stop_loss, take_profit,
		 open_time, confidence, session, range_high, range_low, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'OPEN')`,
		t.TradeID, t.Instrument, t.Direction, t.Units, t.EntryPrice, t.StopLoss, t.TakeProfit,
		t.OpenTime.UTC(), t.Confidence, t.Session, t.RangeHigh, t.RangeLow,
	)
	if err != nil {
		return "", fmt.Errorf("record trade %s: %w", t.TradeID, err)
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(rowID, 10), nil
}

// UpdateTradeExit closes an open record. Unknown or already closed records
// return ErrNotFound.
func (j *SQLite) UpdateTradeExit(recordID string, e TradeExit) error {
	rowID, err := strconv.ParseInt(recordID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: record %q", ErrNotFound, recordID)
	}

	res, err := j.db.Exec(`
		UPDATE trades
		SET status = 'CLOSED', exit_price = ?, close_time = ?, exit_reason = ?, pnl_pips = ?, pnl_amount = ?
		WHERE id = ? AND status = 'OPEN'`,
		e.ExitPrice, e.ExitTime.UTC(), e.Reason, e.PnlPips, e.PnlAmount, rowID,
	)
	if err != nil {
		return fmt.Errorf("update trade exit %s: %w", recordID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: open record %q", ErrNotFound, recordID)
	}
	return nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
