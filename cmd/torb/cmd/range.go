package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/torb/strategies/torb"
)

var rangeCmd = &cobra.Command{
	Use:   "range [YYYY-MM-DD]",
	Short: "Show the opening range and filter decision for a day",
	Long: `Compute the 09:00-10:00 JST opening range for a Tokyo calendar day
and report the daily ATR, width and whether the day is tradeable.

Examples:
  torb range
  torb range 2026-10-14 --symbol EUR_JPY`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRange,
}

var rangeSymbol string

func init() {
	rootCmd.AddCommand(rangeCmd)

	rangeCmd.Flags().StringVarP(&rangeSymbol, "symbol", "s", "", "instrument (default from config)")
}

func runRange(cmd *cobra.Command, args []string) error {
	symbol := cfg.Strategy.Instrument
	if rangeSymbol != "" {
		symbol = rangeSymbol
	}

	var date string
	if len(args) == 1 {
		date = args[0]
	}
	day, err := jstDay(date)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	client, err := newOANDA()
	if err != nil {
		return err
	}

	// history up to the last second of that Tokyo day, or now for today
	asOf := day.AddDate(0, 0, 1).Add(-time.Second)
	if now := time.Now(); now.Before(asOf) {
		asOf = now
	}
	src := client.Until(asOf)
	rc := torb.NewRangeCalculator(src, cfg.Params(), logger.Named("range"))
	rep, err := rc.Compute(cmd.Context(), symbol, asOf)
	if err != nil {
		return err
	}

	fmt.Printf("%s opening range %s\n", symbol, day.Format("2006-01-02"))
	if rep.WindowOpen {
		fmt.Printf("  %s\n", rep.Reason())
		return nil
	}
	if !rep.Found {
		fmt.Println("  no candles in the range window")
		return nil
	}
	fmt.Printf("  High:      %.5f\n", rep.Range.High)
	fmt.Printf("  Low:       %.5f\n", rep.Range.Low)
	fmt.Printf("  Width:     %.1f pips (max %.0f)\n", rep.Range.WidthPips, rep.MaxWidthPips)
	fmt.Printf("  Daily ATR: %.1f pips\n", rep.DailyATRPips)
	if rep.Valid {
		fmt.Println("  ✓ tradeable")
	} else {
		fmt.Printf("  ✗ %s\n", rep.Reason())
	}
	return nil
}
