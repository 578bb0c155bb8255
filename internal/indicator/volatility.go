package indicator

import "math"

// Bands holds a Bollinger Bands series.
type Bands struct {
	Mid   []float64
	Upper []float64
	Lower []float64
}

// Bollinger calculates Bollinger Bands: SMA(period) +/- devFactor
// standard deviations. Each band has length len(prices) - period + 1.
func Bollinger(prices []float64, period int, devFactor float64) Bands {
	if period <= 0 || len(prices) < period {
		return Bands{}
	}

	n := len(prices) - period + 1
	b := Bands{
		Mid:   make([]float64, 0, n),
		Upper: make([]float64, 0, n),
		Lower: make([]float64, 0, n),
	}

	for i := period - 1; i < len(prices); i++ {
		window := prices[i-period+1 : i+1]

		var sum float64
		for _, p := range window {
			sum += p
		}
		mean := sum / float64(period)

		var variance float64
		for _, p := range window {
			variance += (p - mean) * (p - mean)
		}
		std := math.Sqrt(variance / float64(period))

		b.Mid = append(b.Mid, mean)
		b.Upper = append(b.Upper, mean+devFactor*std)
		b.Lower = append(b.Lower, mean-devFactor*std)
	}

	return b
}

// ATR calculates the Average True Range with Wilder's smoothing.
// Returns slice of length: len(closes) - period.
func ATR(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	if period <= 0 || n <= period || len(highs) != n || len(lows) != n {
		return []float64{}
	}

	// True range needs the previous close, so the series starts at index 1.
	tr := make([]float64, n-1)
	for i := 1; i < n; i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i-1] = math.Max(hl, math.Max(hc, lc))
	}

	result := make([]float64, 0, len(tr)-period+1)

	var sum float64
	for i := 0; i < period; i++ {
		sum += tr[i]
	}
	atr := sum / float64(period)
	result = append(result, atr)

	for i := period; i < len(tr); i++ {
		atr = (atr*float64(period-1) + tr[i]) / float64(period)
		result = append(result, atr)
	}

	return result
}
