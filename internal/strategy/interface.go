// Package strategy defines the signal generator interface and the
// registry that backtests resolve strategies from. Strategies are pure
// consumers of candle history: all money, streak, and gating state
// lives in the engine, and strategies are injected into it by
// composition.
package strategy

import (
	"github.com/horaciomoreno100/deriv-bot/internal/core"
)

// Config holds strategy configuration.
type Config struct {
	Params map[string]any
}

// Strategy is a pluggable signal generator. OnCandle is polled once per
// candle with the history ordered oldest to newest, ending at the
// current candle; it returns nil when there is no trade this candle.
type Strategy interface {
	Name() string
	Description() string
	// WarmupBars is the minimum history length before OnCandle can
	// produce signals.
	WarmupBars() int
	Init(cfg Config) error
	OnCandle(history []core.Candle) (*core.Signal, error)
}
