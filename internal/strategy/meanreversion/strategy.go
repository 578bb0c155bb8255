// Package meanreversion implements a Bollinger Band + RSI mean
// reversion strategy for high-volatility synthetic indices, with an
// SMA50 trend filter and an optional stochastic confirmation that
// raises signal strength.
package meanreversion

import (
	"fmt"
	"math"

	"github.com/horaciomoreno100/deriv-bot/internal/core"
	"github.com/horaciomoreno100/deriv-bot/internal/indicator"
	"github.com/horaciomoreno100/deriv-bot/internal/strategy"
)

// MeanReversion trades reversions from Bollinger/RSI extremes.
//
// Call: RSI below the oversold threshold, strengthened by a close below
// the lower band and by a stochastic %K extreme. Put is symmetric. An
// ATR floor filters flat periods, and the SMA50 divergence filter drops
// reversions fighting a strong trend. Signal strength runs 1–3 and
// signals below MinStrength are suppressed.
type MeanReversion struct {
	BBPeriod      int
	BBStdDev      float64
	RSIPeriod     int
	RSIOversold   float64
	RSIOverbought float64
	ATRPeriod     int
	ATRAvgPeriod  int
	ATRMultiplier float64
	SMAPeriod     int
	StochPeriod   int
	StochLow      float64
	StochHigh     float64
	MinStrength   int
	MaxSMADivPct  float64
}

// New creates the strategy with its tuned defaults.
func New() *MeanReversion {
	return &MeanReversion{
		BBPeriod:      20,
		BBStdDev:      2.0,
		RSIPeriod:     14,
		RSIOversold:   22,
		RSIOverbought: 78,
		ATRPeriod:     14,
		ATRAvgPeriod:  50,
		ATRMultiplier: 0.85,
		SMAPeriod:     50,
		StochPeriod:   9,
		StochLow:      20,
		StochHigh:     80,
		MinStrength:   2,
		MaxSMADivPct:  2.0,
	}
}

func (m *MeanReversion) Name() string {
	return "mean_reversion"
}

func (m *MeanReversion) Description() string {
	return fmt.Sprintf("Mean reversion BB(%d,%.1f) + RSI(%d) %g/%g with SMA%d trend filter",
		m.BBPeriod, m.BBStdDev, m.RSIPeriod, m.RSIOversold, m.RSIOverbought, m.SMAPeriod)
}

func (m *MeanReversion) WarmupBars() int {
	warmup := m.BBPeriod
	if n := m.RSIPeriod + 1; n > warmup {
		warmup = n
	}
	if n := m.SMAPeriod; n > warmup {
		warmup = n
	}
	if n := m.StochPeriod; n > warmup {
		warmup = n
	}
	// The ATR average needs a full ATR series under it.
	if n := m.ATRPeriod + m.ATRAvgPeriod; n > warmup {
		warmup = n
	}
	return warmup
}

func (m *MeanReversion) Init(cfg strategy.Config) error {
	if v, ok := cfg.Params["rsi_oversold"].(float64); ok {
		m.RSIOversold = v
	}
	if v, ok := cfg.Params["rsi_overbought"].(float64); ok {
		m.RSIOverbought = v
	}
	if v, ok := cfg.Params["atr_multiplier"].(float64); ok {
		m.ATRMultiplier = v
	}
	if v, ok := cfg.Params["min_strength"].(int); ok {
		m.MinStrength = v
	}
	if m.RSIOversold >= m.RSIOverbought {
		return fmt.Errorf("rsi_oversold %g must be below rsi_overbought %g", m.RSIOversold, m.RSIOverbought)
	}
	return nil
}

func (m *MeanReversion) OnCandle(history []core.Candle) (*core.Signal, error) {
	if len(history) < m.WarmupBars() {
		return nil, nil
	}

	closes := make([]float64, len(history))
	highs := make([]float64, len(history))
	lows := make([]float64, len(history))
	for i, c := range history {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}
	current := history[len(history)-1]
	price := current.Close

	rsi, ok := indicator.Last(indicator.RSI(closes, m.RSIPeriod))
	if !ok {
		return nil, core.ErrInsufficientData
	}
	bands := indicator.Bollinger(closes, m.BBPeriod, m.BBStdDev)
	bbLower, ok := indicator.Last(bands.Lower)
	if !ok {
		return nil, core.ErrInsufficientData
	}
	bbUpper, _ := indicator.Last(bands.Upper)
	sma, ok := indicator.Last(indicator.SMA(closes, m.SMAPeriod))
	if !ok {
		return nil, core.ErrInsufficientData
	}
	stochK, ok := indicator.Last(indicator.StochasticK(highs, lows, closes, m.StochPeriod))
	if !ok {
		return nil, core.ErrInsufficientData
	}
	atrSeries := indicator.ATR(highs, lows, closes, m.ATRPeriod)
	atr, ok := indicator.Last(atrSeries)
	if !ok {
		return nil, core.ErrInsufficientData
	}
	atrAvg, ok := indicator.Last(indicator.SMA(atrSeries, m.ATRAvgPeriod))
	if !ok {
		return nil, core.ErrInsufficientData
	}

	// Volatility floor: skip flat stretches where reversion stalls.
	if atr < atrAvg*m.ATRMultiplier {
		return nil, nil
	}

	smaDivPct := (price - sma) / sma * 100

	var direction core.Direction
	strength := 0

	switch {
	case rsi < m.RSIOversold:
		direction = core.DirectionCall
		strength = 1
		if price < bbLower {
			strength = 2
			if stochK < m.StochLow {
				strength = 3
			}
		}
		// Reversion against a runaway uptrend loses its edge.
		if smaDivPct > m.MaxSMADivPct {
			return nil, nil
		}
	case rsi > m.RSIOverbought:
		direction = core.DirectionPut
		strength = 1
		if price > bbUpper {
			strength = 2
			if stochK > m.StochHigh {
				strength = 3
			}
		}
		if smaDivPct < -m.MaxSMADivPct {
			return nil, nil
		}
	default:
		return nil, nil
	}

	if strength < m.MinStrength {
		return nil, nil
	}

	return &core.Signal{
		Direction: direction,
		Strength:  strength,
		Reason: fmt.Sprintf("RSI %.1f, close %.5f vs BB [%.5f, %.5f], stoch %.1f",
			rsi, price, bbLower, bbUpper, stochK),
		Metadata: map[string]any{
			"rsi":         rsi,
			"bb_lower":    bbLower,
			"bb_upper":    bbUpper,
			"sma":         sma,
			"sma_div_pct": smaDivPct,
			"stoch_k":     stochK,
			"atr":         atr,
			"atr_avg":     atrAvg,
			"bb_dist_pct": math.Abs(price-bbLower) / bbLower * 100,
		},
		At: current.Epoch,
	}, nil
}
