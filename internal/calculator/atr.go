package calculator

import (
	"errors"
	"math"
)

// TrueRange computes max(high-low, |high-prevClose|, |low-prevClose|) per bar.
// The first bar uses its own close as the previous close. NaN candidates are
// ignored; a bar with no usable candidate is NaN.
func TrueRange(high, low, closes []float64) []float64 {
	tr := make([]float64, len(closes))
	for i := range closes {
		prev := closes[0]
		if i > 0 {
			prev = closes[i-1]
		}
		best := math.NaN()
		for _, c := range [3]float64{
			high[i] - low[i],
			math.Abs(high[i] - prev),
			math.Abs(low[i] - prev),
		} {
			if math.IsNaN(c) {
				continue
			}
			if math.IsNaN(best) || c > best {
				best = c
			}
		}
		tr[i] = best
	}
	return tr
}

// CalculateATR returns the rolling mean of the true range over period bars,
// with undefined values replaced by 0.
func CalculateATR(high, low, closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(high) != len(closes) || len(low) != len(closes) {
		return nil, errors.New("high, low and close must have equal length")
	}
	return FillNaN(RollingMean(TrueRange(high, low, closes), period), 0), nil
}
