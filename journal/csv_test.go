package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	fh, err := os.Open(path)
	require.NoError(t, err)
	defer fh.Close()

	rows, err := csv.NewReader(fh).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournal(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")
	j, err := NewCSV(path)
	require.NoError(t, err)

	open := time.Date(2026, 10, 14, 8, 15, 0, 0, time.UTC)
	rid, err := j.RecordTrade(sampleRecord("T1", open))
	require.NoError(t, err)
	assert.Len(t, rid, 26)

	require.NoError(t, j.UpdateTradeExit(rid, TradeExit{
		ExitPrice: 150.560,
		ExitTime:  open.Add(time.Hour),
		Reason:    "TAKE_PROFIT",
		PnlPips:   48,
		PnlAmount: 1000,
	}))
	require.NoError(t, j.Close())

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])

	assert.Equal(t, "OPEN", rows[1][0])
	assert.Equal(t, rid, rows[1][1])
	assert.Equal(t, "T1", rows[1][2])
	assert.Equal(t, "150.512000", rows[1][6])
	assert.Equal(t, "2026-10-14T08:15:00Z", rows[1][9])

	assert.Equal(t, "CLOSE", rows[2][0])
	assert.Equal(t, rid, rows[2][1])
	assert.Equal(t, "TAKE_PROFIT", rows[2][12])
	assert.Equal(t, "48.000000", rows[2][13])
}

func TestCSVJournalAppends(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")
	open := time.Date(2026, 10, 14, 8, 15, 0, 0, time.UTC)

	for _, tid := range []string{"T1", "T2"} {
		j, err := NewCSV(path)
		require.NoError(t, err)
		_, err = j.RecordTrade(sampleRecord(tid, open))
		require.NoError(t, err)
		require.NoError(t, j.Close())
	}

	rows := readCSV(t, path)
	require.Len(t, rows, 3, "header written once")
	assert.Equal(t, "T2", rows[2][2])
}

func TestCSVJournalEmptyRecordID(t *testing.T) {
	t.Parallel()

	j, err := NewCSV(filepath.Join(t.TempDir(), "trades.csv"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	assert.ErrorIs(t, j.UpdateTradeExit("", TradeExit{}), ErrNotFound)
}

func TestNopJournal(t *testing.T) {
	t.Parallel()

	var j Journal = Nop{}
	rid, err := j.RecordTrade(TradeRecord{})
	assert.NoError(t, err)
	assert.Empty(t, rid)
	assert.NoError(t, j.UpdateTradeExit(rid, TradeExit{}))
	assert.NoError(t, j.Close())
}
