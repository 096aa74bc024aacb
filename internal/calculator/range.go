package calculator

import "errors"

// CalculateSupportResistance returns the trailing min (support) and max
// (resistance) of closes over window bars. Both include the current bar.
func CalculateSupportResistance(closes []float64, window int) (support, resistance []float64, err error) {
	if window <= 0 {
		return nil, nil, errors.New("window must be positive")
	}
	return RollingMin(closes, window), RollingMax(closes, window), nil
}
