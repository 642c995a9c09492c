package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/torb/journal"
	"github.com/rustyeddy/torb/market"
	"github.com/rustyeddy/torb/oanda"
)

func newOANDA() (*oanda.Client, error) {
	o := cfg.OANDA
	if o.Token == "" {
		return nil, fmt.Errorf("OANDA token missing: set OANDA_TOKEN or oanda.token")
	}
	var opts []oanda.Option
	if o.BaseURL != "" {
		opts = append(opts, oanda.WithBaseURL(o.BaseURL))
	}
	return oanda.NewClient(o.Token, o.AccountID, o.Practice, opts...), nil
}

func openJournal() (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.CSVPath)
	default:
		return journal.Nop{}, nil
	}
}

// jstDay parses YYYY-MM-DD as a Tokyo calendar day. An empty string is
// today.
func jstDay(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().In(market.JST)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, market.JST), nil
	}
	return time.ParseInLocation("2006-01-02", s, market.JST)
}
