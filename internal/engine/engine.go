// Package engine implements the binary options settlement core: the
// contract registry, cash ledger, stake sizers, and the entry gates,
// driven one candle at a time.
package engine

import (
	"fmt"
	"time"

	"github.com/horaciomoreno100/deriv-bot/internal/core"
	"go.uber.org/zap"
)

// SignalSource produces at most one trade signal per candle. The
// history slice is ordered oldest to newest and ends with the current
// candle. A nil signal means no trade this candle.
type SignalSource interface {
	OnCandle(history []core.Candle) (*core.Signal, error)
}

// Observer receives engine lifecycle events. Implementations must not
// mutate engine state.
type Observer interface {
	ContractOpened(direction core.Direction, stake float64)
	ContractSettled(won bool, profit float64)
	EntrySkipped(reason string)
}

// Skip reasons passed to Observer.EntrySkipped.
const (
	SkipCooldown    = "cooldown"
	SkipConcurrency = "concurrency"
	SkipBankrupt    = "bankrupt"
	SkipBadSignal   = "bad_signal"
)

// Config holds the contract-level engine parameters. Stake sizing has
// its own config on the chosen Sizer.
type Config struct {
	InitialCash      float64
	PayoutRate       float64
	Expiry           time.Duration
	Cooldown         time.Duration
	MaxConcurrent    int
	StopOnBankruptcy bool
}

// Validate rejects unusable engine parameters.
func (c Config) Validate() error {
	if c.InitialCash <= 0 {
		return fmt.Errorf("initial_cash must be positive, got %f", c.InitialCash)
	}
	if c.PayoutRate < 0 {
		return fmt.Errorf("payout_rate must not be negative, got %f", c.PayoutRate)
	}
	if c.Expiry <= 0 {
		return fmt.Errorf("expiry must be positive, got %s", c.Expiry)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative, got %s", c.Cooldown)
	}
	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("max_concurrent_trades must be positive, got %d", c.MaxConcurrent)
	}
	return nil
}

// Engine drives one backtest run. It is single-threaded and
// event-driven: candles are processed strictly in order, and within one
// candle every expired contract is settled before a new entry is
// evaluated. Each run needs its own Engine; ledger, sizer, and registry
// state are never shared across runs.
type Engine struct {
	cfg      Config
	ledger   *Ledger
	registry *Registry
	sizer    Sizer
	cooldown *CooldownGate
	limiter  *ConcurrencyLimiter
	source   SignalSource
	logger   *zap.Logger
	observer Observer
}

// Option configures optional Engine collaborators.
type Option func(*Engine)

// WithLogger attaches a logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithObserver attaches an event observer, typically the metrics
// registry.
func WithObserver(obs Observer) Option {
	return func(e *Engine) { e.observer = obs }
}

// New validates the config and assembles a fresh engine around the
// given sizer and signal source.
func New(cfg Config, sizer Sizer, source SignalSource, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, err)
	}
	if sizer == nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("sizer is required"))
	}
	if source == nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("signal source is required"))
	}

	ledger := NewLedger(cfg.InitialCash)
	e := &Engine{
		cfg:      cfg,
		ledger:   ledger,
		registry: NewRegistry(ledger, sizer),
		sizer:    sizer,
		cooldown: NewCooldownGate(cfg.Cooldown),
		limiter:  NewConcurrencyLimiter(cfg.MaxConcurrent),
		source:   source,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ProcessCandle advances the simulation by one candle. Expired
// contracts settle against the candle close first; then the gates are
// checked, the signal source polled, and at most one new contract
// opened. It returns the contracts settled on this candle, in the order
// they were opened.
func (e *Engine) ProcessCandle(history []core.Candle) ([]*Contract, error) {
	if len(history) == 0 {
		return nil, core.ErrNoData
	}
	candle := history[len(history)-1]
	now := candle.Epoch
	price := candle.Close

	settled := e.registry.SettleExpired(now, price)
	for _, c := range settled {
		won := c.Status == StatusWon
		e.logger.Debug("contract settled",
			zap.Int64("id", c.ID),
			zap.String("direction", string(c.Direction)),
			zap.Bool("won", won),
			zap.Float64("profit", c.Profit),
			zap.Float64("cash", e.ledger.Cash()),
		)
		if e.observer != nil {
			e.observer.ContractSettled(won, c.Profit)
		}
	}

	if e.cfg.StopOnBankruptcy && e.ledger.Cash() <= 0 {
		e.skip(SkipBankrupt)
		return settled, nil
	}
	if !e.cooldown.AllowsEntry(now) {
		e.skip(SkipCooldown)
		return settled, nil
	}
	if !e.limiter.AllowsEntry(e.registry.OpenCount()) {
		e.skip(SkipConcurrency)
		return settled, nil
	}

	signal, err := e.source.OnCandle(history)
	if err != nil {
		return settled, core.WrapError(core.ErrStrategyFailed, err)
	}
	if signal == nil {
		return settled, nil
	}
	if !e.validSignal(signal) {
		e.skip(SkipBadSignal)
		return settled, nil
	}

	stake := e.sizer.NextStake(e.ledger.Cash(), signal.Strength)
	if stake <= 0 {
		e.logger.Debug("sizer produced non-positive stake, skipping entry",
			zap.Float64("cash", e.ledger.Cash()))
		return settled, nil
	}

	contract, err := e.registry.Open(signal.Direction, price, now, stake, e.cfg.PayoutRate, e.cfg.Expiry)
	if err != nil {
		return settled, err
	}
	e.cooldown.RecordEntry(now)

	e.logger.Debug("contract opened",
		zap.Int64("id", contract.ID),
		zap.String("direction", string(contract.Direction)),
		zap.Float64("entry", contract.EntryPrice),
		zap.Float64("stake", contract.Stake),
		zap.Int("strength", signal.Strength),
		zap.Time("expiry", contract.ExpiryTime),
	)
	if e.observer != nil {
		e.observer.ContractOpened(contract.Direction, contract.Stake)
	}
	return settled, nil
}

// validSignal rejects malformed signals. A bad signal is logged and the
// candle treated as signal-free; it never aborts the run.
func (e *Engine) validSignal(s *core.Signal) bool {
	if s.Direction != core.DirectionCall && s.Direction != core.DirectionPut {
		e.logger.Warn("signal with unknown direction ignored",
			zap.String("direction", string(s.Direction)))
		return false
	}
	if s.Strength < 1 {
		e.logger.Warn("signal with non-positive strength ignored",
			zap.Int("strength", s.Strength))
		return false
	}
	return true
}

func (e *Engine) skip(reason string) {
	if e.observer != nil {
		e.observer.EntrySkipped(reason)
	}
}

// Ledger returns the run's cash ledger.
func (e *Engine) Ledger() *Ledger {
	return e.ledger
}

// Registry returns the run's contract registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}
