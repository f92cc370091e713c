// Package engine drives the trading lifecycle. The engine owns a small
// state machine and runs one decision pipeline per tick; no failure
// inside a tick ever reaches the driving loop.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"spot-breakout-bot/internal/config"
	"spot-breakout-bot/internal/exchange"
	"spot-breakout-bot/internal/metrics"
	"spot-breakout-bot/internal/pipeline"
	"spot-breakout-bot/internal/state"
	"spot-breakout-bot/internal/strategy"
	"spot-breakout-bot/internal/timescale"

	"go.uber.org/zap"
)

type State string

const (
	StateInitializing State = "INITIALIZING"
	StateSyncing      State = "SYNCING"
	StateTrading      State = "TRADING"
	StatePaused       State = "PAUSED"
	StateTerminating  State = "TERMINATING"
)

// tickLogEvery spaces out routine market-snapshot log lines.
const tickLogEvery = 10

// lifecycleKey is where the last lifecycle state is persisted across
// restarts.
const lifecycleKey = "engine:lifecycle"

// Strategy consumes one market snapshot per tick and either emits a
// signal, declines (ok=false), or fails.
type Strategy interface {
	ProcessTick(t exchange.Ticker) (strategy.Signal, bool, error)
	Reset()
}

// Submitter places a fully sized instruction on the venue.
type Submitter interface {
	Submit(ctx context.Context, instr strategy.TradeInstruction) (string, error)
}

// Notifier delivers operator alerts. Delivery failures are logged, never
// allowed to affect the tick.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

type Engine struct {
	cfg      *config.Config
	log      *zap.Logger
	client   exchange.Client
	strategy Strategy
	risk     *strategy.Manager
	executor Submitter
	metrics  *metrics.Metrics
	alerts   Notifier
	tsdb     *timescale.Writer
	store    state.Store
	tracker  *Tracker
	now      func() time.Time

	mu          sync.Mutex
	state       State
	pauseReason string
	tickSeq     uint64
}

func New(cfg *config.Config, client exchange.Client, strat Strategy, risk *strategy.Manager, executor Submitter, m *metrics.Metrics, notifier Notifier, tsdb *timescale.Writer, store state.Store, log *zap.Logger) *Engine {
	if m == nil {
		m = metrics.NewNoop()
	}
	return &Engine{
		cfg:      cfg,
		log:      log,
		client:   client,
		strategy: strat,
		risk:     risk,
		executor: executor,
		metrics:  m,
		alerts:   notifier,
		tsdb:     tsdb,
		store:    store,
		tracker:  NewTracker(),
		now:      time.Now,
		state:    StateInitializing,
	}
}

// State reports the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// PauseReason reports why the engine paused; empty unless paused.
func (e *Engine) PauseReason() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pauseReason
}

// Status is a one-line human-readable state description.
func (e *Engine) Status() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StatePaused && e.pauseReason != "" {
		return fmt.Sprintf("%s (%s)", e.state, e.pauseReason)
	}
	return string(e.state)
}

// Tracker exposes the performance tracker for reporting.
func (e *Engine) Tracker() *Tracker {
	return e.tracker
}

// Run drives Tick on the configured interval until the context ends.
func (e *Engine) Run(ctx context.Context) error {
	interval := e.cfg.Strategy.TickInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	if e.store != nil {
		if prev, ok, err := e.store.Get(ctx, lifecycleKey); err != nil {
			e.log.Warn("failed to read persisted lifecycle state", zap.Error(err))
		} else if ok {
			e.log.Info("previous session lifecycle state", zap.String("state", prev))
		}
	}
	e.log.Info("engine started",
		zap.String("symbol", e.cfg.Strategy.Symbol),
		zap.Duration("tick_interval", interval),
	)
	for {
		select {
		case <-ctx.Done():
			e.setState(StateTerminating, "")
			e.log.Info("engine stopped", zap.String("status", e.Report()))
			return ctx.Err()
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}

// Tick advances the lifecycle by one step. It never reports a failure to
// the caller; every problem is absorbed into logs, metrics, and state.
func (e *Engine) Tick(ctx context.Context) {
	e.metrics.Ticks.Inc()
	switch e.State() {
	case StateInitializing:
		e.handleInitializing(ctx)
	case StateSyncing:
		e.handleSyncing(ctx)
	case StateTrading:
		e.handleTrading(ctx)
	case StatePaused:
		e.handlePaused()
	case StateTerminating:
		// no-op
	}
}

func (e *Engine) handleInitializing(ctx context.Context) {
	res := pipeline.From(e.client.CheckConnectivity(ctx)).
		Inspect(func(latency int64) {
			e.log.Info("exchange reachable", zap.Int64("latency_ms", latency))
		})
	if _, err := res.Unwrap(); err != nil {
		e.pause(ctx, fmt.Sprintf("connectivity check failed: %v", err))
		return
	}
	e.setState(StateSyncing, "")
}

// handleSyncing feeds one snapshot into the strategy to warm indicator
// history without acting on the outcome.
func (e *Engine) handleSyncing(ctx context.Context) {
	symbol := e.cfg.Strategy.Symbol
	res := pipeline.Bind(
		pipeline.From(e.client.FetchTicker(ctx, symbol)),
		func(t exchange.Ticker) pipeline.Result[exchange.Ticker] {
			if _, _, err := e.strategy.ProcessTick(t); err != nil {
				return pipeline.Err[exchange.Ticker](err)
			}
			return pipeline.Ok(t)
		},
	)
	t, err := res.Unwrap()
	if err != nil {
		e.pause(ctx, fmt.Sprintf("sync failed: %v", err))
		return
	}
	e.log.Info("synced market state",
		zap.String("symbol", symbol),
		zap.Float64("price", t.Price),
	)
	e.setState(StateTrading, "")
}

type placedOrder struct {
	instr   strategy.TradeInstruction
	orderID string
}

func (e *Engine) handleTrading(ctx context.Context) {
	e.mu.Lock()
	e.tickSeq++
	seq := e.tickSeq
	e.mu.Unlock()
	symbol := e.cfg.Strategy.Symbol

	var snap exchange.Ticker
	var haveSnap bool
	var sig strategy.Signal
	var haveSig bool

	// Stage 1: market snapshot.
	tickRes := pipeline.From(e.client.FetchTicker(ctx, symbol)).
		Inspect(func(t exchange.Ticker) {
			snap, haveSnap = t, true
			if seq%tickLogEvery == 0 {
				e.log.Info("market tick",
					zap.String("symbol", t.Symbol),
					zap.Float64("price", t.Price),
					zap.Float64("volume_1h", t.Volume1h),
				)
			}
		})

	// Stage 2: strategy decision. A quiet tick short-circuits the rest.
	sigRes := pipeline.Bind(tickRes, func(t exchange.Ticker) pipeline.Result[pipeline.Pair[exchange.Ticker, strategy.Signal]] {
		sig, ok, err := e.strategy.ProcessTick(t)
		if err != nil {
			return pipeline.Err[pipeline.Pair[exchange.Ticker, strategy.Signal]](err)
		}
		if !ok {
			return pipeline.Err[pipeline.Pair[exchange.Ticker, strategy.Signal]](pipeline.ErrNoSignal)
		}
		return pipeline.Ok(pipeline.Pair[exchange.Ticker, strategy.Signal]{First: t, Second: sig})
	}).Inspect(func(p pipeline.Pair[exchange.Ticker, strategy.Signal]) {
		sig, haveSig = p.Second, true
		e.metrics.SignalsEmitted.Inc()
		e.log.Info("signal detected",
			zap.String("side", string(p.Second.Side)),
			zap.Float64("strength", p.Second.Strength),
			zap.String("regime", string(p.Second.Regime)),
			zap.String("reason", p.Second.Reason),
		)
	})

	// Stage 3: quote-asset balance.
	balRes := pipeline.Bind(sigRes, func(p pipeline.Pair[exchange.Ticker, strategy.Signal]) pipeline.Result[sizingInput] {
		bal, err := e.client.FetchBalance(ctx, e.cfg.Strategy.QuoteAsset)
		if err != nil {
			return pipeline.Err[sizingInput](err)
		}
		return pipeline.Ok(sizingInput{ticker: p.First, signal: p.Second, balance: bal})
	})

	// Stage 4: risk sizing.
	instrRes := pipeline.Bind(balRes, func(in sizingInput) pipeline.Result[strategy.TradeInstruction] {
		instr, err := e.risk.CalculateEntry(in.signal, in.balance, in.ticker.Price)
		if err != nil {
			e.metrics.RiskRejections.Inc()
			return pipeline.Err[strategy.TradeInstruction](err)
		}
		instr.ClientOrderID = e.clientOrderID(in.signal, seq)
		return pipeline.Ok(instr)
	})

	// Stage 5: submission.
	orderRes := pipeline.Bind(instrRes, func(instr strategy.TradeInstruction) pipeline.Result[placedOrder] {
		orderID, err := e.executor.Submit(ctx, instr)
		if err != nil {
			e.metrics.OrdersFailed.Inc()
			return pipeline.Err[placedOrder](err)
		}
		return pipeline.Ok(placedOrder{instr: instr, orderID: orderID})
	})

	placed, err := orderRes.Unwrap()
	switch {
	case err == nil:
		e.metrics.OrdersPlaced.Inc()
		e.tracker.RecordTrade(placed.instr.Amount * placed.instr.LimitPrice)
		e.log.Info("order placed",
			zap.String("order_id", placed.orderID),
			zap.String("side", string(placed.instr.Side)),
			zap.Float64("amount", placed.instr.Amount),
			zap.Float64("limit", placed.instr.LimitPrice),
			zap.Float64("stop_loss", placed.instr.StopLoss),
			zap.Float64("take_profit", placed.instr.TakeProfit),
		)
		e.notify(ctx, fmt.Sprintf("%s %s %.3f @ %.2f (order %s)",
			placed.instr.Side, placed.instr.Symbol, placed.instr.Amount,
			placed.instr.LimitPrice, placed.orderID))
	case errors.Is(err, pipeline.ErrNoSignal):
		if seq%tickLogEvery == 0 {
			e.log.Debug("no signal this tick", zap.String("symbol", symbol))
		}
	default:
		e.tracker.RecordError()
		e.log.Warn("trading tick failed",
			zap.String("kind", string(pipeline.KindOf(err))),
			zap.Error(err),
		)
	}
	e.recordSnapshot(snap, haveSnap, sig, haveSig)
}

type sizingInput struct {
	ticker  exchange.Ticker
	signal  strategy.Signal
	balance exchange.Balance
}

// handlePaused retries recovery unconditionally: every tick while paused
// is a fresh attempt, starting over from Initializing.
func (e *Engine) handlePaused() {
	e.mu.Lock()
	reason := e.pauseReason
	e.mu.Unlock()
	e.log.Info("attempting recovery", zap.String("was_paused_for", reason))
	e.setState(StateInitializing, "")
}

func (e *Engine) pause(ctx context.Context, reason string) {
	e.setState(StatePaused, reason)
	e.metrics.Pauses.Inc()
	e.log.Warn("engine paused", zap.String("reason", reason))
	e.notify(ctx, "Paused: "+reason)
}

func (e *Engine) setState(s State, reason string) {
	e.mu.Lock()
	e.state = s
	e.pauseReason = reason
	e.mu.Unlock()
	if e.store != nil {
		if err := e.store.Set(context.Background(), lifecycleKey, string(s)); err != nil {
			e.log.Warn("failed to persist lifecycle state", zap.Error(err))
		}
	}
}

func (e *Engine) notify(ctx context.Context, message string) {
	if e.alerts == nil {
		return
	}
	if err := e.alerts.Send(ctx, message); err != nil {
		e.log.Warn("alert send failed", zap.Error(err))
	}
}

// clientOrderID is unique per trading tick: the sequence number breaks
// ties between same-side orders within one millisecond.
func (e *Engine) clientOrderID(sig strategy.Signal, seq uint64) string {
	return fmt.Sprintf("bo-%s-%d-%d", strings.ToLower(string(sig.Side)), e.now().UnixMilli(), seq)
}

func (e *Engine) recordSnapshot(snap exchange.Ticker, haveSnap bool, sig strategy.Signal, haveSig bool) {
	if e.tsdb == nil || !haveSnap {
		return
	}
	rec := timescale.TickSnapshot{
		Time:      e.now().UTC(),
		State:     string(e.State()),
		Symbol:    snap.Symbol,
		Price:     snap.Price,
		Volume1h:  snap.Volume1h,
		Volume24h: snap.Volume24h,
	}
	if haveSig {
		rec.SignalSide = string(sig.Side)
		rec.SignalStrength = sig.Strength
	}
	e.tsdb.Enqueue(rec)
}

// Report summarizes tracker state for the periodic status job.
func (e *Engine) Report() string {
	s := e.tracker.Snapshot()
	return fmt.Sprintf("state=%s trades=%d ok=%d failed=%d volume=%.2f uptime=%s",
		e.Status(), s.Trades(), s.Successes, s.Failures, s.VolumeUSD,
		s.Uptime.Round(time.Second))
}
