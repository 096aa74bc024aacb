package calculator

import (
	"errors"
	"math"
)

// NeutralRSI is used wherever the gain/loss ratio is undefined.
const NeutralRSI = 50.0

// CalculateRSI computes a simple-average RSI over period bars.
//
// The first delta and any delta touching a NaN close count as 0. A window
// without losses makes the ratio undefined, which resolves to NeutralRSI
// rather than 100.
func CalculateRSI(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if math.IsNaN(delta) {
			continue
		}
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	avgGain := RollingMean(gains, period)
	avgLoss := RollingMean(losses, period)

	rsi := make([]float64, n)
	for i := range rsi {
		if avgLoss[i] == 0 || math.IsNaN(avgLoss[i]) || math.IsNaN(avgGain[i]) {
			rsi[i] = NeutralRSI
			continue
		}
		rs := avgGain[i] / avgLoss[i]
		v := 100.0 - 100.0/(1.0+rs)
		if math.IsNaN(v) {
			v = NeutralRSI
		}
		rsi[i] = v
	}
	return rsi, nil
}
