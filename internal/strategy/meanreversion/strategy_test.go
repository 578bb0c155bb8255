package meanreversion_test

import (
	"testing"
	"time"

	"github.com/horaciomoreno100/deriv-bot/internal/core"
	"github.com/horaciomoreno100/deriv-bot/internal/strategy"
	"github.com/horaciomoreno100/deriv-bot/internal/strategy/meanreversion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candlesFrom(closes []float64) []core.Candle {
	start := time.Unix(1_700_000_000, 0)
	out := make([]core.Candle, len(closes))
	for i, c := range closes {
		out[i] = core.Candle{
			Symbol:      "R_75",
			Granularity: 60,
			Epoch:       start.Add(time.Duration(i) * time.Minute),
			Open:        c,
			High:        c + 0.5,
			Low:         c - 0.5,
			Close:       c,
		}
	}
	return out
}

// chop produces a gently alternating series around 100 so the RSI sits
// near 50 and the Bollinger bands stay tight.
func chop(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = 100.1
		} else {
			closes[i] = 99.9
		}
	}
	return closes
}

// plunge appends n sharp down bars: RSI collapses, the close breaks the
// lower band, and the stochastic pins to its low.
func plunge(base []float64, n int) []float64 {
	closes := append([]float64(nil), base...)
	for i := 0; i < n; i++ {
		closes = append(closes, closes[len(closes)-1]-3)
	}
	return closes
}

func spike(base []float64, n int) []float64 {
	closes := append([]float64(nil), base...)
	for i := 0; i < n; i++ {
		closes = append(closes, closes[len(closes)-1]+3)
	}
	return closes
}

func TestMeanReversion_CallOnOversoldBreak(t *testing.T) {
	s := meanreversion.New()
	require.NoError(t, s.Init(strategy.Config{}))

	sig, err := s.OnCandle(candlesFrom(plunge(chop(60), 10)))
	require.NoError(t, err)
	require.NotNil(t, sig)
	assert.Equal(t, core.DirectionCall, sig.Direction)
	assert.Equal(t, 3, sig.Strength,
		"band break plus stochastic extreme should max out strength")
	assert.Less(t, sig.Metadata["rsi"].(float64), s.RSIOversold)
}

func TestMeanReversion_PutOnOverboughtBreak(t *testing.T) {
	s := meanreversion.New()
	require.NoError(t, s.Init(strategy.Config{}))

	sig, err := s.OnCandle(candlesFrom(spike(chop(60), 10)))
	require.NoError(t, err)
	require.NotNil(t, sig)
	assert.Equal(t, core.DirectionPut, sig.Direction)
	assert.Equal(t, 3, sig.Strength)
	assert.Greater(t, sig.Metadata["rsi"].(float64), s.RSIOverbought)
}

func TestMeanReversion_NoSignalInChop(t *testing.T) {
	s := meanreversion.New()
	require.NoError(t, s.Init(strategy.Config{}))

	sig, err := s.OnCandle(candlesFrom(chop(80)))
	require.NoError(t, err)
	assert.Nil(t, sig, "RSI near 50 must not trade")
}

func TestMeanReversion_NilDuringWarmup(t *testing.T) {
	s := meanreversion.New()
	require.NoError(t, s.Init(strategy.Config{}))

	sig, err := s.OnCandle(candlesFrom(chop(s.WarmupBars() - 1)))
	require.NoError(t, err)
	assert.Nil(t, sig)
}

func TestMeanReversion_MinStrengthSuppresses(t *testing.T) {
	s := meanreversion.New()
	require.NoError(t, s.Init(strategy.Config{Params: map[string]any{
		"min_strength": 4,
	}}))

	// The same fixture that fires at strength 3 is dropped when the bar
	// is raised above it.
	sig, err := s.OnCandle(candlesFrom(plunge(chop(60), 10)))
	require.NoError(t, err)
	assert.Nil(t, sig)
}

func TestMeanReversion_InitValidation(t *testing.T) {
	s := meanreversion.New()
	err := s.Init(strategy.Config{Params: map[string]any{
		"rsi_oversold":   80.0,
		"rsi_overbought": 20.0,
	}})
	require.Error(t, err)

	s = meanreversion.New()
	require.NoError(t, s.Init(strategy.Config{Params: map[string]any{
		"rsi_oversold":   25.0,
		"rsi_overbought": 75.0,
		"atr_multiplier": 0.5,
	}}))
	assert.Equal(t, 25.0, s.RSIOversold)
	assert.Equal(t, 0.5, s.ATRMultiplier)
}
