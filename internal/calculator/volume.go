package calculator

import "errors"

// CalculateVolumeSpike flags bars whose volume exceeds multiplier times the
// trailing average volume. NaN volumes never spike.
func CalculateVolumeSpike(volumes []float64, window int, multiplier float64) ([]bool, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	avg := RollingMean(volumes, window)
	spikes := make([]bool, len(volumes))
	for i, v := range volumes {
		// comparisons against NaN are false
		spikes[i] = v > avg[i]*multiplier
	}
	return spikes, nil
}
