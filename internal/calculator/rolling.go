package calculator

import "math"

// rolling applies agg to the trailing window ending at every position.
// The window shrinks at the start of the series (min_periods=1) and NaN
// values are skipped; a window without any number yields NaN.
func rolling(values []float64, window int, agg func([]float64) float64) []float64 {
	out := make([]float64, len(values))
	buf := make([]float64, 0, window)
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		buf = buf[:0]
		for _, v := range values[start : i+1] {
			if !math.IsNaN(v) {
				buf = append(buf, v)
			}
		}
		if len(buf) == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = agg(buf)
	}
	return out
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStd is the n-1 standard deviation; undefined (NaN) for a single value.
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	m := mean(xs)
	ss := 0.0
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// RollingMean returns the trailing mean over window bars.
func RollingMean(values []float64, window int) []float64 {
	return rolling(values, window, mean)
}

// RollingStd returns the trailing sample standard deviation over window bars.
func RollingStd(values []float64, window int) []float64 {
	return rolling(values, window, sampleStd)
}

// RollingMin returns the trailing minimum over window bars.
func RollingMin(values []float64, window int) []float64 {
	return rolling(values, window, minOf)
}

// RollingMax returns the trailing maximum over window bars.
func RollingMax(values []float64, window int) []float64 {
	return rolling(values, window, maxOf)
}

// ForwardFill replaces NaN with the last preceding number. Leading NaNs stay.
func ForwardFill(values []float64) []float64 {
	out := make([]float64, len(values))
	last := math.NaN()
	for i, v := range values {
		if !math.IsNaN(v) {
			last = v
		}
		out[i] = last
	}
	return out
}

// FillNaN replaces every NaN with fallback.
func FillNaN(values []float64, fallback float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			v = fallback
		}
		out[i] = v
	}
	return out
}

func hasFinite(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
