package analyzer

import (
	"math"

	"StockSignal/internal/model"
	"StockSignal/internal/strategy"
)

// EngineerFeatures returns the predictor inputs and the matching closes for
// every row that has a lagged return, a full-window close volatility and a
// finite indicator set. Rows failing any of these are dropped.
func EngineerFeatures(rows []model.ScoredRow, sentiment *float64, volWindow int) ([]model.FeatureVector, []float64) {
	closes := make([]float64, len(rows))
	for i := range rows {
		closes[i] = rows[i].Close
	}
	lagged := LaggedReturn(closes)
	vol := Volatility(closes, volWindow)

	var feats []model.FeatureVector
	var targets []float64
	for i := range rows {
		if !model.IsFinite(lagged[i]) || !model.IsFinite(vol[i]) {
			continue
		}
		fv := strategy.Features(&rows[i], sentiment)
		if !allFinite(fv.Values()) {
			continue
		}
		feats = append(feats, fv)
		targets = append(targets, closes[i])
	}
	return feats, targets
}

// LaggedReturn is the one-bar percentage change; the first bar is NaN.
func LaggedReturn(closes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := range closes {
		if i == 0 || closes[i-1] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = closes[i]/closes[i-1] - 1
	}
	return out
}

// Volatility is the sample standard deviation of the last window closes.
// Unlike the indicator rolling helpers it needs a full window of defined
// values and is NaN otherwise.
func Volatility(closes []float64, window int) []float64 {
	out := make([]float64, len(closes))
	for i := range closes {
		out[i] = math.NaN()
		if window < 2 || i+1 < window {
			continue
		}
		win := closes[i+1-window : i+1]
		if !allFinite(win) {
			continue
		}
		sum := 0.0
		for _, v := range win {
			sum += v
		}
		mean := sum / float64(window)
		ss := 0.0
		for _, v := range win {
			ss += (v - mean) * (v - mean)
		}
		out[i] = math.Sqrt(ss / float64(window-1))
	}
	return out
}

func allFinite(xs []float64) bool {
	for _, x := range xs {
		if !model.IsFinite(x) {
			return false
		}
	}
	return true
}
