package indicator

import (
	"math"
	"testing"
)

func TestRSI_AllGains(t *testing.T) {
	prices := []float64{10, 11, 12, 13, 14, 15, 16}
	rsi := RSI(prices, 3)

	if len(rsi) != 4 {
		t.Fatalf("expected 4 values, got %d", len(rsi))
	}
	for i, v := range rsi {
		if v != 100 {
			t.Errorf("rsi[%d] = %f, want 100 for monotonic gains", i, v)
		}
	}
}

func TestRSI_Alternating(t *testing.T) {
	// Balanced up and down moves seed at exactly 50, then Wilder
	// smoothing oscillates around it without leaving (0, 100).
	prices := []float64{10, 11, 10, 11, 10, 11, 10, 11, 10}
	rsi := RSI(prices, 4)

	if len(rsi) != 4 {
		t.Fatalf("expected 4 values, got %d", len(rsi))
	}
	if math.Abs(rsi[0]-50) > 1e-9 {
		t.Errorf("rsi[0] = %f, want 50 for balanced seed window", rsi[0])
	}
	for i, v := range rsi {
		if v <= 0 || v >= 100 {
			t.Errorf("rsi[%d] = %f, out of bounds", i, v)
		}
	}
}

func TestRSI_NotEnoughData(t *testing.T) {
	if rsi := RSI([]float64{10, 11, 12}, 3); len(rsi) != 0 {
		t.Errorf("expected empty slice, got %d values", len(rsi))
	}
}

func TestStochasticK(t *testing.T) {
	highs := []float64{12, 13, 14, 15}
	lows := []float64{8, 9, 10, 11}
	closes := []float64{10, 11, 14, 11}

	k := StochasticK(highs, lows, closes, 3)
	if len(k) != 2 {
		t.Fatalf("expected 2 values, got %d", len(k))
	}

	// Window [0..2]: hh=14, ll=8, close=14 → 100
	if k[0] != 100 {
		t.Errorf("k[0] = %f, want 100", k[0])
	}
	// Window [1..3]: hh=15, ll=9, close=11 → 100*(11-9)/6
	want := 100 * (11.0 - 9.0) / 6.0
	if math.Abs(k[1]-want) > 1e-9 {
		t.Errorf("k[1] = %f, want %f", k[1], want)
	}
}

func TestStochasticK_FlatRange(t *testing.T) {
	highs := []float64{10, 10, 10}
	lows := []float64{10, 10, 10}
	closes := []float64{10, 10, 10}

	k := StochasticK(highs, lows, closes, 3)
	if len(k) != 1 || k[0] != 50 {
		t.Errorf("flat range should yield 50, got %v", k)
	}
}
