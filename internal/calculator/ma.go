package calculator

import "errors"

// CalculateMA computes the rolling mean of closes over window bars,
// forward-filled so that no bar after the first valid close is undefined.
func CalculateMA(closes []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	return ForwardFill(RollingMean(closes, window)), nil
}
