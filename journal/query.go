package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const tradeColumns = `id, trade_id, instrument, direction, units, entry_price, stop_loss, take_profit,
	open_time, confidence, session, range_high, range_low, status,
	exit_price, close_time, exit_reason, pnl_pips, pnl_amount`

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (Trade, error) {
	var (
		t         Trade
		rowID     int64
		status    string
		exitPrice sql.NullFloat64
		closeTime sql.NullTime
		reason    sql.NullString
		pnlPips   sql.NullFloat64
		pnlAmount sql.NullFloat64
	)
	err := s.Scan(
		&rowID,
		&t.TradeID,
		&t.Instrument,
		&t.Direction,
		&t.Units,
		&t.EntryPrice,
		&t.StopLoss,
		&t.TakeProfit,
		&t.OpenTime,
		&t.Confidence,
		&t.Session,
		&t.RangeHigh,
		&t.RangeLow,
		&status,
		&exitPrice,
		&closeTime,
		&reason,
		&pnlPips,
		&pnlAmount,
	)
	if err != nil {
		return Trade{}, err
	}
	t.RecordID = strconv.FormatInt(rowID, 10)
	t.Closed = status == "CLOSED"
	t.ExitPrice = exitPrice.Float64
	t.ExitTime = closeTime.Time
	t.Reason = reason.String
	t.PnlPips = pnlPips.Float64
	t.PnlAmount = pnlAmount.Float64
	return t, nil
}

func scanTrades(rows *sql.Rows) ([]Trade, error) {
	defer rows.Close()

	var out []Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTrade returns a single trade by trade ID.
func (j *SQLite) GetTrade(tradeID string) (Trade, error) {
	row := j.db.QueryRow(`SELECT `+tradeColumns+` FROM trades WHERE trade_id = ?`, tradeID)

	t, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Trade{}, fmt.Errorf("%w: trade %q", ErrNotFound, tradeID)
		}
		return Trade{}, err
	}
	return t, nil
}

// ListTradesClosedBetween returns trades whose close_time is within [start, end).
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]Trade, error) {
	rows, err := j.db.Query(`SELECT `+tradeColumns+`
		FROM trades
		WHERE status = 'CLOSED' AND close_time >= ? AND close_time < ?
		ORDER BY close_time ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	return scanTrades(rows)
}

// OpenTrades returns every record that has not been closed, oldest first.
func (j *SQLite) OpenTrades() ([]Trade, error) {
	rows, err := j.db.Query(`SELECT ` + tradeColumns + `
		FROM trades
		WHERE status = 'OPEN'
		ORDER BY open_time ASC`)
	if err != nil {
		return nil, err
	}
	return scanTrades(rows)
}
