package rsithreshold_test

import (
	"testing"
	"time"

	"github.com/horaciomoreno100/deriv-bot/internal/core"
	"github.com/horaciomoreno100/deriv-bot/internal/strategy"
	"github.com/horaciomoreno100/deriv-bot/internal/strategy/rsithreshold"
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

// fourteen drops of 2 push the RSI to the floor, then a small bounce
// turns it up while still deep in oversold territory.
func oversoldTurn() []float64 {
	closes := []float64{100}
	for i := 0; i < 14; i++ {
		closes = append(closes, closes[len(closes)-1]-2)
	}
	return append(closes, closes[len(closes)-1]+0.5)
}

func overboughtTurn() []float64 {
	closes := []float64{100}
	for i := 0; i < 14; i++ {
		closes = append(closes, closes[len(closes)-1]+2)
	}
	return append(closes, closes[len(closes)-1]-0.5)
}

func TestRSIThreshold_CallOnOversoldTurn(t *testing.T) {
	s := rsithreshold.New()
	require.NoError(t, s.Init(strategy.Config{}))

	sig, err := s.OnCandle(candlesFrom(oversoldTurn()))
	require.NoError(t, err)
	require.NotNil(t, sig)
	assert.Equal(t, core.DirectionCall, sig.Direction)
	assert.Equal(t, 1, sig.Strength)
	assert.Less(t, sig.Metadata["rsi"].(float64), s.Oversold)
}

func TestRSIThreshold_PutOnOverboughtTurn(t *testing.T) {
	s := rsithreshold.New()
	require.NoError(t, s.Init(strategy.Config{}))

	sig, err := s.OnCandle(candlesFrom(overboughtTurn()))
	require.NoError(t, err)
	require.NotNil(t, sig)
	assert.Equal(t, core.DirectionPut, sig.Direction)
	assert.Greater(t, sig.Metadata["rsi"].(float64), s.Overbought)
}

func TestRSIThreshold_NoSignalWhileExtremeDeepens(t *testing.T) {
	s := rsithreshold.New()
	require.NoError(t, s.Init(strategy.Config{}))

	// Still falling on the last bar: oversold but no turn yet.
	closes := []float64{100}
	for i := 0; i < 15; i++ {
		closes = append(closes, closes[len(closes)-1]-2)
	}
	sig, err := s.OnCandle(candlesFrom(closes))
	require.NoError(t, err)
	assert.Nil(t, sig)
}

func TestRSIThreshold_NilDuringWarmup(t *testing.T) {
	s := rsithreshold.New()
	require.NoError(t, s.Init(strategy.Config{}))

	sig, err := s.OnCandle(candlesFrom(oversoldTurn()[:s.WarmupBars()-1]))
	require.NoError(t, err)
	assert.Nil(t, sig)
}

func TestRSIThreshold_InitValidation(t *testing.T) {
	s := rsithreshold.New()
	err := s.Init(strategy.Config{Params: map[string]any{
		"oversold":   70.0,
		"overbought": 30.0,
	}})
	require.Error(t, err)

	s = rsithreshold.New()
	require.NoError(t, s.Init(strategy.Config{Params: map[string]any{
		"period":     10,
		"oversold":   25.0,
		"overbought": 75.0,
	}}))
	assert.Equal(t, 10, s.Period)
	assert.Equal(t, 25.0, s.Oversold)
	assert.Equal(t, 75.0, s.Overbought)
}
