package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/torb/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query trade journal data",
	Long: `Query and display virtual trades from the SQLite journal.

Days are Tokyo calendar days.

Subcommands:
  trade  - Get details of a specific trade by ID
  today  - List trades closed today
  day    - List trades closed on a specific day
  open   - List trades without an exit

Examples:
  torb journal trade 01JA2Z0X8Q4N6B9T3V5W7Y1C2D
  torb journal today
  torb journal day 2026-10-14`,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List trades closed today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listDay("")
	},
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List trades closed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listDay(args[0])
	},
}

var journalOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "List trades without an exit",
	Args:  cobra.NoArgs,
	RunE:  runJournalOpen,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)
	journalCmd.AddCommand(journalOpenCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (default from config)")
}

func openReader() (*journal.SQLite, error) {
	path := journalDBPath
	if path == "" {
		path = cfg.Journal.DBPath
	}
	if path == "" {
		return nil, fmt.Errorf("no SQLite journal configured: use --db")
	}
	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := openReader()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	fmt.Println(journal.FormatTradeOrg(rec))
	return nil
}

func listDay(date string) error {
	j, err := openReader()
	if err != nil {
		return err
	}
	defer j.Close()

	start, err := jstDay(date)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	end := start.Add(24 * time.Hour)

	recs, err := j.ListTradesClosedBetween(start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	fmt.Println(journal.FormatTradesOrg(recs))
	fmt.Println(journal.Summarize(recs))
	return nil
}

func runJournalOpen(cmd *cobra.Command, args []string) error {
	j, err := openReader()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.OpenTrades()
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	fmt.Println(journal.FormatTradesOrg(recs))
	return nil
}
