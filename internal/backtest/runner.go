// Package backtest drives the contract engine over historical candles
// and aggregates the results of a run.
package backtest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/horaciomoreno100/deriv-bot/internal/core"
	"github.com/horaciomoreno100/deriv-bot/internal/engine"
	"github.com/horaciomoreno100/deriv-bot/internal/strategy"
)

// SizerFactory builds a fresh sizer per run. Sizers carry progression
// state, so two runs must never share one.
type SizerFactory func() (engine.Sizer, error)

// Runner executes backtests. One Runner can serve several runs; every
// run gets its own engine, ledger, and sizer.
type Runner struct {
	engineCfg engine.Config
	newSizer  SizerFactory
	strat     strategy.Strategy
	log       *zap.Logger
	observer  engine.Observer
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithObserver forwards engine events, e.g. to the metrics registry.
func WithObserver(obs engine.Observer) Option {
	return func(r *Runner) { r.observer = obs }
}

// NewRunner creates a Runner.
func NewRunner(cfg engine.Config, newSizer SizerFactory, strat strategy.Strategy, opts ...Option) *Runner {
	r := &Runner{
		engineCfg: cfg,
		newSizer:  newSizer,
		strat:     strat,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// candleCounter is the optional observer extension for per-candle
// throughput metrics.
type candleCounter interface {
	RecordCandle()
}

// Run replays the candles through a fresh engine. Candles must be
// ordered oldest to newest. Contracts still open when the data ends
// stay unsettled and are excluded from the stats.
func (r *Runner) Run(ctx context.Context, candles []core.Candle) (*Result, error) {
	if len(candles) == 0 {
		return nil, core.ErrNoData
	}

	sizer, err := r.newSizer()
	if err != nil {
		return nil, err
	}

	engineOpts := []engine.Option{engine.WithLogger(r.log)}
	if r.observer != nil {
		engineOpts = append(engineOpts, engine.WithObserver(r.observer))
	}
	e, err := engine.New(r.engineCfg, sizer, r.strat, engineOpts...)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	started := time.Now()
	log := r.log.With(zap.String("run_id", runID))
	log.Info("backtest started",
		zap.String("strategy", r.strat.Name()),
		zap.String("symbol", candles[0].Symbol),
		zap.Int("candles", len(candles)))

	for i := range candles {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if _, err := e.ProcessCandle(candles[:i+1]); err != nil {
			return nil, err
		}
		if counter, ok := r.observer.(candleCounter); ok {
			counter.RecordCandle()
		}
	}

	settled := e.Registry().Settled()
	result := &Result{
		RunID:       runID,
		Strategy:    r.strat.Name(),
		Symbol:      candles[0].Symbol,
		Granularity: candles[0].Granularity,
		StartDate:   candles[0].Epoch,
		EndDate:     candles[len(candles)-1].Epoch,
		StartedAt:   started.UTC(),
		Duration:    time.Since(started),
		InitialCash: r.engineCfg.InitialCash,
		Contracts:   settled,
		OpenAtEnd:   e.Registry().OpenCount(),
		Stats:       CalculateStats(settled, r.engineCfg.InitialCash),
	}

	log.Info("backtest finished",
		zap.Int("contracts", result.Stats.TotalContracts),
		zap.Float64("win_rate", result.Stats.WinRate),
		zap.Float64("net_profit", result.Stats.NetProfit),
		zap.Duration("took", result.Duration))
	return result, nil
}
