package calculator

import "errors"

// CalculateBollinger returns the upper and lower bands mean ± k·stddev.
// The standard deviation of a single-value window counts as 0.
func CalculateBollinger(closes []float64, window int, k float64) (upper, lower []float64, err error) {
	if window <= 0 {
		return nil, nil, errors.New("window must be positive")
	}
	mid := RollingMean(closes, window)
	std := FillNaN(RollingStd(closes, window), 0)

	upper = make([]float64, len(closes))
	lower = make([]float64, len(closes))
	for i := range closes {
		upper[i] = mid[i] + k*std[i]
		lower[i] = mid[i] - k*std[i]
	}
	return upper, lower, nil
}
