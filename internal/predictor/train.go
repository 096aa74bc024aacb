package predictor

import (
	"errors"
	"fmt"
	"math"

	"StockSignal/internal/model"
)

// Config controls dataset construction and model selection.
type Config struct {
	Horizon      int     `yaml:"forecast_horizon"`
	MinRows      int     `yaml:"min_training_rows"`
	TestFraction float64 `yaml:"test_fraction"`
}

// DefaultConfig forecasts 10 bars ahead and needs 60 rows to train.
func DefaultConfig() Config {
	return Config{Horizon: 10, MinRows: 60, TestFraction: 0.2}
}

// Result is the selected model with its held-out error.
type Result struct {
	Model Model
	MSE   float64
}

// BuildSamples pairs each feature row with the close Horizon bars later.
// Rows with any non-finite value are skipped.
func BuildSamples(features []model.FeatureVector, closes []float64, horizon int) []Sample {
	var out []Sample
	for i := 0; i+horizon < len(closes) && i < len(features); i++ {
		x := features[i].Values()
		y := closes[i+horizon]
		if !model.IsFinite(y) || !allFinite(x) {
			continue
		}
		out = append(out, Sample{X: x, Y: y})
	}
	return out
}

// Train fits the candidates on a chronological split and keeps the one with
// the lowest test MSE. With too few rows it falls back to the mean of the
// available closes and reports an MSE of 0.
func Train(features []model.FeatureVector, closes []float64, cfg Config) (Result, error) {
	if cfg.Horizon <= 0 {
		return Result{}, errors.New("forecast horizon must be positive")
	}
	samples := BuildSamples(features, closes, cfg.Horizon)
	if len(samples) < cfg.MinRows {
		m, err := fitCloseMean(closes)
		if err != nil {
			return Result{}, err
		}
		return Result{Model: m, MSE: 0}, nil
	}

	nTest := int(math.Ceil(float64(len(samples)) * cfg.TestFraction))
	if nTest < 1 {
		nTest = 1
	}
	train, test := samples[:len(samples)-nTest], samples[len(samples)-nTest:]

	var best Result
	best.MSE = math.Inf(1)
	if lin, err := FitLinear(train); err == nil {
		if mse := MSE(lin, test); mse < best.MSE {
			best = Result{Model: lin, MSE: mse}
		}
	}
	if mean, err := FitMean(train); err == nil {
		if mse := MSE(mean, test); mse < best.MSE {
			best = Result{Model: mean, MSE: mse}
		}
	}
	if best.Model == nil {
		return Result{}, fmt.Errorf("no model could be fitted on %d samples", len(train))
	}
	return best, nil
}

func fitCloseMean(closes []float64) (*Mean, error) {
	var samples []Sample
	for _, c := range closes {
		if model.IsFinite(c) {
			samples = append(samples, Sample{Y: c})
		}
	}
	return FitMean(samples)
}

func allFinite(xs []float64) bool {
	for _, x := range xs {
		if !model.IsFinite(x) {
			return false
		}
	}
	return true
}
