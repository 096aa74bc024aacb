// Package predictor fits small regressors that forecast the close a fixed
// number of bars ahead from the per-row feature vector.
package predictor

import (
	"errors"
	"math"
)

// Model is a fitted regressor.
type Model interface {
	Name() string
	Predict(x []float64) float64
}

// Sample is one training example.
type Sample struct {
	X []float64
	Y float64
}

// Mean always predicts the training target mean.
type Mean struct {
	value float64
}

// FitMean fits a Mean regressor.
func FitMean(samples []Sample) (*Mean, error) {
	if len(samples) == 0 {
		return nil, errors.New("no samples")
	}
	sum := 0.0
	for _, s := range samples {
		sum += s.Y
	}
	return &Mean{value: sum / float64(len(samples))}, nil
}

func (m *Mean) Name() string                { return "mean" }
func (m *Mean) Predict(_ []float64) float64 { return m.value }

// MSE returns the mean squared error of m on samples.
func MSE(m Model, samples []Sample) float64 {
	if len(samples) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, s := range samples {
		d := m.Predict(s.X) - s.Y
		sum += d * d
	}
	return sum / float64(len(samples))
}
