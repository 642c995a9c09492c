package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/torb/config"
	"github.com/rustyeddy/torb/journal"
	"github.com/rustyeddy/torb/market"
)

func TestJSTDay(t *testing.T) {
	d, err := jstDay("2026-10-14")
	require.NoError(t, err)
	assert.Equal(t, market.JST, d.Location())
	assert.Equal(t, 15, d.UTC().Hour(), "midnight JST is 15:00 UTC the day before")

	today, err := jstDay("")
	require.NoError(t, err)
	assert.Equal(t, 0, today.Hour())

	_, err = jstDay("14/10/2026")
	assert.Error(t, err)
}

func TestOpenJournal(t *testing.T) {
	dir := t.TempDir()
	cfg = config.Default()

	cfg.Journal = config.JournalConfig{Type: "none"}
	j, err := openJournal()
	require.NoError(t, err)
	assert.IsType(t, journal.Nop{}, j)

	cfg.Journal = config.JournalConfig{Type: "csv", CSVPath: filepath.Join(dir, "trades.csv")}
	j, err = openJournal()
	require.NoError(t, err)
	assert.IsType(t, &journal.CSV{}, j)
	require.NoError(t, j.Close())

	cfg.Journal = config.JournalConfig{Type: "sqlite", DBPath: filepath.Join(dir, "torb.db")}
	j, err = openJournal()
	require.NoError(t, err)
	assert.IsType(t, &journal.SQLite{}, j)
	require.NoError(t, j.Close())
}

func TestNewOANDARequiresToken(t *testing.T) {
	cfg = config.Default()
	_, err := newOANDA()
	assert.Error(t, err)

	cfg.OANDA.Token = "tok"
	c, err := newOANDA()
	require.NoError(t, err)
	assert.NotNil(t, c)
}
