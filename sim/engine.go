// Package sim runs the virtual trade engine: a polling loop that drives the
// opening range breakout pipeline for one symbol and manages the paper
// trades it opens.
package sim

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/rustyeddy/torb/indicators"
	"github.com/rustyeddy/torb/journal"
	"github.com/rustyeddy/torb/logging"
	"github.com/rustyeddy/torb/market"
	"github.com/rustyeddy/torb/risk"
	"github.com/rustyeddy/torb/strategies/torb"
)

// Publisher receives every signal that opens a trade. Implementations must
// not block.
type Publisher interface {
	Publish(torb.Signal)
}

type nopPublisher struct{}

func (nopPublisher) Publish(torb.Signal) {}

type Config struct {
	Interval        time.Duration
	MaxPositions    int
	Notional        float64
	RiskPct         float64
	AccountCurrency string
	MaxHold         time.Duration
	Gate            TradingGate
	Risk            risk.Policy
	Params          torb.Params
}

func DefaultConfig() Config {
	return Config{
		Interval:        5 * time.Minute,
		MaxPositions:    1,
		Notional:        1_000_000,
		RiskPct:         0.02,
		AccountCurrency: "JPY",
		MaxHold:         4 * time.Hour,
		Gate:            DefaultGate(),
		Params:          torb.DefaultParams(),
	}
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithJournal(j journal.Journal) Option {
	return func(e *Engine) {
		if j != nil {
			e.journal = j
		}
	}
}

func WithPublisher(p Publisher) Option {
	return func(e *Engine) {
		if p != nil {
			e.pub = p
		}
	}
}

// WithClock replaces time.Now, for replays and tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// dayStats feeds the risk policy. It resets on JST date change, which also
// drops cached opening ranges.
type dayStats struct {
	date              string
	consecutiveLosses int
	realized          float64
}

type Engine struct {
	cfg       Config
	feed      market.Feed
	ranges    *torb.RangeCalculator
	detector  *torb.Detector
	confirmer *torb.Confirmer
	journal   journal.Journal
	pub       Publisher
	log       *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time

	mu      sync.Mutex
	trades  map[string]*VirtualTrade // open trades by ID
	closed  []VirtualTrade
	pending map[string]torb.Signal   // breakout awaiting retest, by symbol
	stats   dayStats

	runMu   sync.Mutex
	running bool
	symbol  string
	sched   *cron.Cron
	cancel  context.CancelFunc
	first   sync.WaitGroup
}

func NewEngine(feed market.Feed, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		feed:    feed,
		journal: journal.Nop{},
		pub:     nopPublisher{},
		log:     zap.NewNop(),
		tracer:  otel.Tracer("github.com/rustyeddy/torb/sim"),
		now:     time.Now,
		trades:  make(map[string]*VirtualTrade),
		pending: make(map[string]torb.Signal),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.ranges = torb.NewRangeCalculator(feed, cfg.Params, e.log.Named("range"))
	e.detector = torb.NewDetector(cfg.Params)
	e.confirmer = torb.NewConfirmer(cfg.Params)
	return e
}

// Start schedules Tick for symbol every Interval and runs one tick right
// away. Ticks never overlap. Starting a running engine logs a warning and
// does nothing.
func (e *Engine) Start(ctx context.Context, symbol string) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if e.running {
		e.log.Warn("engine already running", zap.String("symbol", e.symbol))
		return nil
	}
	if e.cfg.Interval <= 0 {
		return fmt.Errorf("invalid tick interval %s", e.cfg.Interval)
	}

	cl := logging.Cron(e.log)
	sched := cron.New(cron.WithLogger(cl))
	runCtx, cancel := context.WithCancel(ctx)

	job := cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(func() {
		e.runTick(runCtx, symbol)
	}))
	if _, err := sched.AddJob("@every "+e.cfg.Interval.String(), job); err != nil {
		cancel()
		return fmt.Errorf("schedule ticks: %w", err)
	}

	e.running = true
	e.symbol = symbol
	e.sched = sched
	e.cancel = cancel

	sched.Start()
	e.first.Add(1)
	go func() {
		defer e.first.Done()
		job.Run()
	}()

	e.log.Info("engine started",
		zap.String("symbol", symbol),
		zap.Duration("interval", e.cfg.Interval),
	)
	return nil
}

// Stop cancels the schedule and waits for an in-flight tick. Open trades are
// left as they are. Stopping a stopped engine logs a warning.
func (e *Engine) Stop() {
	e.runMu.Lock()
	if !e.running {
		e.runMu.Unlock()
		e.log.Warn("engine not running")
		return
	}
	e.running = false
	e.cancel()
	done := e.sched.Stop()
	symbol := e.symbol
	e.runMu.Unlock()

	<-done.Done()
	e.first.Wait()

	e.log.Info("engine stopped",
		zap.String("symbol", symbol),
		zap.Int("open_trades", e.GetActiveTradeCount()),
	)
}

func (e *Engine) IsRunning() bool {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	return e.running
}

func (e *Engine) runTick(ctx context.Context, symbol string) {
	if ctx.Err() != nil {
		return
	}
	if err := e.Tick(ctx, symbol); err != nil {
		e.log.Warn("tick aborted", zap.String("symbol", symbol), zap.Error(err))
	}
}

// Tick runs one polling cycle for symbol: exits for open trades first, then
// the entry pipeline. Errors are upstream data failures; the tick stops at
// the failing step and the next one retries.
func (e *Engine) Tick(ctx context.Context, symbol string) (err error) {
	ctx, span := e.tracer.Start(ctx, "engine.tick", trace.WithAttributes(attribute.String("symbol", symbol)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tick, err := e.feed.GetPrice(ctx, symbol)
	if err != nil {
		return fmt.Errorf("price %s: %w", symbol, err)
	}
	now := e.now()

	e.monitorExits(symbol, tick, now)
	return e.evaluateEntry(ctx, symbol, tick, now)
}

func (e *Engine) monitorExits(symbol string, tick market.Tick, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, t := range e.openTradesLocked() {
		if t.Symbol != symbol {
			continue
		}
		if reason, px, ok := exitFor(t, tick, now); ok {
			e.closeTradeLocked(t, px, now, reason)
		}
	}
}

func (e *Engine) evaluateEntry(ctx context.Context, symbol string, tick market.Tick, now time.Time) error {
	if !e.cfg.Gate.Allows(now) {
		e.log.Debug("outside trading window", zap.String("symbol", symbol), zap.Time("now", now))
		return nil
	}

	if d := risk.Evaluate(e.cfg.Risk, e.riskState(now)); !d.Allowed {
		e.log.Info("risk check blocked entries", zap.String("symbol", symbol), zap.String("reason", d.Reason()))
		return nil
	}

	if n := e.GetActiveTradeCount(); n >= e.cfg.MaxPositions {
		e.log.Debug("max positions reached", zap.String("symbol", symbol), zap.Int("open_trades", n))
		return nil
	}

	rng, err := e.ranges.Get(ctx, symbol, now)
	if err != nil {
		return err
	}
	if rng == nil {
		return nil
	}

	e.mu.Lock()
	pending, ok := e.pending[symbol]
	e.mu.Unlock()

	if ok {
		return e.evaluateRetest(ctx, pending, tick, now)
	}
	return e.detectBreakout(ctx, *rng, tick, now)
}

func (e *Engine) detectBreakout(ctx context.Context, rng torb.OpeningRange, tick market.Tick, now time.Time) error {
	p := e.cfg.Params
	symbol := rng.Symbol

	candles, err := e.feed.GetHistoricalData(ctx, symbol, p.RecentTimeframe, p.RecentCandleLimit)
	if err != nil {
		return fmt.Errorf("recent candles %s: %w", symbol, err)
	}

	sig := e.detector.Detect(torb.BreakoutInput{
		Symbol:  symbol,
		Range:   rng,
		Price:   tick.Mid(),
		RSI:     indicators.RSI(market.Closes(candles), p.RSIPeriod),
		Candles: candles,
		Time:    now,
	})
	if sig == nil {
		return nil
	}

	e.mu.Lock()
	if _, exists := e.pending[symbol]; exists {
		e.mu.Unlock()
		return nil
	}
	e.pending[symbol] = *sig
	e.mu.Unlock()

	e.log.Info("breakout detected, awaiting retest",
		zap.String("symbol", symbol),
		zap.String("signal_id", sig.ID),
		zap.Stringer("direction", sig.Direction),
		zap.Float64("price", sig.EntryPrice),
		zap.Float64("stop", sig.StopLoss),
		zap.Float64("target", sig.TargetPrice),
		zap.Float64("confidence", sig.Confidence),
	)
	return nil
}

func (e *Engine) evaluateRetest(ctx context.Context, pending torb.Signal, tick market.Tick, now time.Time) error {
	p := e.cfg.Params
	symbol := pending.Symbol

	candles, err := e.feed.GetHistoricalData(ctx, symbol, p.RetestTimeframe, p.RetestCandleLimit)
	if err != nil {
		return fmt.Errorf("retest candles %s: %w", symbol, err)
	}

	sig, outcome := e.confirmer.Confirm(pending, candles, now)
	if outcome == torb.Waiting {
		return nil
	}

	e.mu.Lock()
	delete(e.pending, symbol)
	e.mu.Unlock()

	if outcome == torb.TimedOut {
		e.log.Info("breakout expired without retest",
			zap.String("symbol", symbol),
			zap.String("signal_id", pending.ID),
		)
		return nil
	}
	return e.openTrade(*sig, tick, now)
}

// openTrade sizes and opens a trade for an ACTIVE signal. It refuses when
// the position limit is reached or the stop is not on the loss side of the
// entry.
func (e *Engine) openTrade(sig torb.Signal, tick market.Tick, now time.Time) error {
	log := e.log.With(zap.String("symbol", sig.Symbol), zap.String("trade_id", sig.ID))

	if sig.StopPips() <= 0 {
		log.Warn("stop is not below entry for the trade direction, skipping",
			zap.Float64("entry", sig.EntryPrice),
			zap.Float64("stop", sig.StopLoss),
		)
		return nil
	}

	meta, err := market.Lookup(sig.Symbol)
	if err != nil {
		return err
	}
	rate, err := market.QuoteToAccountRate(sig.Symbol, e.cfg.AccountCurrency, tick.Mid())
	if err != nil {
		return fmt.Errorf("size %s: %w", sig.Symbol, err)
	}
	size := risk.Calculate(risk.Inputs{
		Equity:         e.cfg.Notional,
		RiskPct:        e.cfg.RiskPct,
		EntryPrice:     sig.EntryPrice,
		StopPrice:      sig.StopLoss,
		PipLocation:    meta.PipLocation,
		QuoteToAccount: rate,
	})
	if size.Units <= 0 {
		log.Warn("position size is zero, skipping", zap.Float64("stop_pips", size.StopPips))
		return nil
	}

	e.mu.Lock()
	if len(e.trades) >= e.cfg.MaxPositions {
		e.mu.Unlock()
		log.Info("max positions reached, signal dropped")
		return nil
	}
	if _, dup := e.trades[sig.ID]; dup {
		e.mu.Unlock()
		return nil
	}

	t := &VirtualTrade{
		ID:              sig.ID,
		Signal:          sig,
		Symbol:          sig.Symbol,
		Direction:       sig.Direction,
		Units:           size.Units,
		EntryTime:       now,
		EntryPrice:      sig.EntryPrice,
		StopLoss:        sig.StopLoss,
		TakeProfit:      sig.TargetPrice,
		MaxHold:         e.cfg.MaxHold,
		PipValuePerUnit: size.PipValuePerUnit,
		Status:          StatusOpen,
	}
	e.trades[t.ID] = t

	recordID, err := e.journal.RecordTrade(journal.TradeRecord{
		TradeID:    t.ID,
		Instrument: t.Symbol,
		Direction:  t.Direction.String(),
		Units:      t.Units,
		EntryPrice: t.EntryPrice,
		StopLoss:   t.StopLoss,
		TakeProfit: t.TakeProfit,
		OpenTime:   t.EntryTime,
		Confidence: sig.Confidence,
		Session:    string(sig.Session),
		RangeHigh:  sig.Range.High,
		RangeLow:   sig.Range.Low,
	})
	if err != nil {
		log.Error("journal record trade", zap.Error(err))
	}
	t.recordID = recordID
	e.mu.Unlock()

	log.Info("virtual trade opened",
		zap.Stringer("direction", t.Direction),
		zap.Float64("units", t.Units),
		zap.Float64("entry", t.EntryPrice),
		zap.Float64("stop", t.StopLoss),
		zap.Float64("take_profit", t.TakeProfit),
		zap.Float64("risk_amount", size.RiskAmount),
	)
	e.pub.Publish(sig)
	return nil
}

// CloseTrade closes an open trade at the current price with reason MANUAL.
// It reports false when the trade is unknown or already closed.
func (e *Engine) CloseTrade(ctx context.Context, tradeID string) (bool, error) {
	e.mu.Lock()
	t, ok := e.trades[tradeID]
	e.mu.Unlock()
	if !ok {
		return false, nil
	}

	tick, err := e.feed.GetPrice(ctx, t.Symbol)
	if err != nil {
		return false, fmt.Errorf("close trade %s: %w", tradeID, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// a tick may have closed it while the price was fetched
	if t, ok = e.trades[tradeID]; !ok || !t.IsOpen() {
		return false, nil
	}
	e.closeTradeLocked(t, markPrice(t.Direction, tick), e.now(), ExitManual)
	return true, nil
}

func (e *Engine) closeTradeLocked(t *VirtualTrade, price float64, now time.Time, reason ExitReason) {
	if !t.IsOpen() {
		return
	}

	t.Status = StatusClosed
	t.ExitTime = now
	t.ExitPrice = price
	t.ExitReason = reason
	t.PnlPips = PnlPips(t.Symbol, t.Direction, t.EntryPrice, price)
	t.PnlAmount = PnlAmount(t.PnlPips, t.Units, t.PipValuePerUnit)

	delete(e.trades, t.ID)
	e.closed = append(e.closed, *t)
	e.recordResultLocked(now, t.PnlAmount)

	err := e.journal.UpdateTradeExit(t.recordID, journal.TradeExit{
		ExitPrice: t.ExitPrice,
		ExitTime:  t.ExitTime,
		Reason:    string(t.ExitReason),
		PnlPips:   t.PnlPips,
		PnlAmount: t.PnlAmount,
	})
	if err != nil {
		e.log.Error("journal update trade exit", zap.String("trade_id", t.ID), zap.Error(err))
	}

	e.log.Info("virtual trade closed",
		zap.String("symbol", t.Symbol),
		zap.String("trade_id", t.ID),
		zap.String("reason", string(reason)),
		zap.Float64("exit", price),
		zap.Float64("pnl_pips", t.PnlPips),
		zap.Float64("pnl_amount", t.PnlAmount),
	)
}

func (e *Engine) rollDayLocked(now time.Time) {
	date := now.In(market.JST).Format("2006-01-02")
	if e.stats.date != date {
		e.stats = dayStats{date: date}
		// earlier days' ranges are never read again
		e.ranges.Invalidate()
	}
}

func (e *Engine) recordResultLocked(now time.Time, pnl float64) {
	e.rollDayLocked(now)
	e.stats.realized += pnl
	if pnl < 0 {
		e.stats.consecutiveLosses++
	} else {
		e.stats.consecutiveLosses = 0
	}
}

func (e *Engine) riskState(now time.Time) risk.State {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rollDayLocked(now)
	return risk.State{
		Now:               now,
		Equity:            e.cfg.Notional,
		ConsecutiveLosses: e.stats.consecutiveLosses,
		DayRealized:       e.stats.realized,
	}
}

func (e *Engine) openTradesLocked() []*VirtualTrade {
	out := make([]*VirtualTrade, 0, len(e.trades))
	for _, t := range e.trades {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EntryTime.Before(out[j].EntryTime)
	})
	return out
}

func (e *Engine) GetActiveTradeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.trades)
}

// GetActiveTrades returns copies of the open trades, oldest first.
func (e *Engine) GetActiveTrades() []VirtualTrade {
	e.mu.Lock()
	defer e.mu.Unlock()

	open := e.openTradesLocked()
	out := make([]VirtualTrade, len(open))
	for i, t := range open {
		out[i] = *t
	}
	return out
}

// ClosedTrades returns the trades closed since the engine was created.
func (e *Engine) ClosedTrades() []VirtualTrade {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]VirtualTrade(nil), e.closed...)
}

// Pending returns the breakout awaiting retest for symbol, if any.
func (e *Engine) Pending(symbol string) (torb.Signal, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.pending[symbol]
	return s, ok
}
