// Package rsithreshold implements a plain RSI reversal strategy: Call
// when the RSI is oversold and turning up, Put when overbought and
// turning down.
package rsithreshold

import (
	"fmt"

	"github.com/horaciomoreno100/deriv-bot/internal/core"
	"github.com/horaciomoreno100/deriv-bot/internal/indicator"
	"github.com/horaciomoreno100/deriv-bot/internal/strategy"
)

// RSIThreshold emits strength-1 signals from RSI extremes. The turn
// requirement (current RSI moving back toward the mean) avoids entering
// while the extreme is still deepening.
type RSIThreshold struct {
	Period     int
	Oversold   float64
	Overbought float64
}

// New creates the strategy with the classic 14/30/70 parameters.
func New() *RSIThreshold {
	return &RSIThreshold{
		Period:     14,
		Oversold:   30,
		Overbought: 70,
	}
}

func (r *RSIThreshold) Name() string {
	return "rsi_threshold"
}

func (r *RSIThreshold) Description() string {
	return fmt.Sprintf("RSI(%d) reversal at %g/%g", r.Period, r.Oversold, r.Overbought)
}

func (r *RSIThreshold) WarmupBars() int {
	// Two RSI values are needed to detect the turn.
	return r.Period + 2
}

func (r *RSIThreshold) Init(cfg strategy.Config) error {
	if v, ok := cfg.Params["period"].(int); ok {
		r.Period = v
	}
	if v, ok := cfg.Params["oversold"].(float64); ok {
		r.Oversold = v
	}
	if v, ok := cfg.Params["overbought"].(float64); ok {
		r.Overbought = v
	}
	if r.Period < 2 {
		return fmt.Errorf("period must be at least 2, got %d", r.Period)
	}
	if r.Oversold >= r.Overbought {
		return fmt.Errorf("oversold %g must be below overbought %g", r.Oversold, r.Overbought)
	}
	return nil
}

func (r *RSIThreshold) OnCandle(history []core.Candle) (*core.Signal, error) {
	if len(history) < r.WarmupBars() {
		return nil, nil
	}

	closes := make([]float64, len(history))
	for i, c := range history {
		closes[i] = c.Close
	}

	series := indicator.RSI(closes, r.Period)
	if len(series) < 2 {
		return nil, nil
	}
	current := series[len(series)-1]
	previous := series[len(series)-2]

	var direction core.Direction
	switch {
	case current < r.Oversold && current > previous:
		direction = core.DirectionCall
	case current > r.Overbought && current < previous:
		direction = core.DirectionPut
	default:
		return nil, nil
	}

	return &core.Signal{
		Direction: direction,
		Strength:  1,
		Reason:    fmt.Sprintf("RSI %.1f turning from %.1f", current, previous),
		Metadata: map[string]any{
			"rsi":      current,
			"rsi_prev": previous,
		},
		At: history[len(history)-1].Epoch,
	}, nil
}
