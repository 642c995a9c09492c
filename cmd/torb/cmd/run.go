package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/torb/broadcast"
	"github.com/rustyeddy/torb/journal"
	"github.com/rustyeddy/torb/sim"
	"github.com/rustyeddy/torb/telemetry"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the signal and virtual trade engine",
	Long: `Poll OANDA prices for one instrument, detect opening range breakouts,
confirm them on a retest and manage virtual trades until interrupted.

Example:
  torb run -c torb.yaml
  torb run --symbol EUR_JPY`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var runSymbol string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runSymbol, "symbol", "s", "", "instrument to trade (default from config)")
}

func runRun(cmd *cobra.Command, args []string) error {
	symbol := cfg.Strategy.Instrument
	if runSymbol != "" {
		symbol = runSymbol
	}

	client, err := newOANDA()
	if err != nil {
		return err
	}
	ec, err := cfg.EngineConfig()
	if err != nil {
		return fmt.Errorf("engine config: %w", err)
	}

	j, err := openJournal()
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdown, err := startTracing(ctx)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("tracer shutdown", zap.Error(err))
			}
		}()
	}

	hub := broadcast.NewHub()
	defer hub.Close()
	signals, unsubscribe := hub.Subscribe(16)
	defer unsubscribe()

	go func() {
		for sig := range signals {
			fmt.Printf("▶ %s\n", sig)
		}
	}()

	engine := sim.NewEngine(client, ec,
		sim.WithLogger(logger.Named("engine")),
		sim.WithJournal(j),
		sim.WithPublisher(hub),
	)

	fmt.Printf("Running %s every %s (journal: %s)\n", symbol, ec.Interval, cfg.Journal.Type)
	if err := engine.Start(ctx, symbol); err != nil {
		return err
	}

	<-ctx.Done()
	engine.Stop()

	closed := engine.ClosedTrades()
	trades := make([]journal.Trade, 0, len(closed))
	for _, t := range closed {
		trades = append(trades, journal.Trade{
			TradeRecord: journal.TradeRecord{
				TradeID:    t.ID,
				Instrument: t.Symbol,
				Direction:  t.Direction.String(),
				Units:      t.Units,
				EntryPrice: t.EntryPrice,
				OpenTime:   t.EntryTime,
			},
			TradeExit: journal.TradeExit{
				ExitPrice: t.ExitPrice,
				ExitTime:  t.ExitTime,
				Reason:    string(t.ExitReason),
				PnlPips:   t.PnlPips,
				PnlAmount: t.PnlAmount,
			},
			Closed: true,
		})
	}
	fmt.Printf("\nSession: %s\n", journal.Summarize(trades))
	if n := engine.GetActiveTradeCount(); n > 0 {
		fmt.Printf("%d virtual trade(s) left open\n", n)
	}
	if d := hub.Dropped(); d > 0 {
		logger.Warn("signals dropped by slow subscribers", zap.Uint64("dropped", d))
	}
	return nil
}

func startTracing(ctx context.Context) (func(context.Context) error, error) {
	var w io.Writer
	if cfg.Tracing.File != "" {
		f, err := os.OpenFile(cfg.Tracing.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		w = f
		shutdown, err := telemetry.Init(ctx, w, version)
		if err != nil {
			f.Close()
			return nil, err
		}
		return func(ctx context.Context) error {
			defer f.Close()
			return shutdown(ctx)
		}, nil
	}
	return telemetry.Init(ctx, w, version)
}
