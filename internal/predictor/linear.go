package predictor

import (
	"errors"
	"math"
)

// ridge scales the diagonal damping that keeps collinear features (a constant
// sentiment column, for instance) solvable.
const ridge = 1e-8

// Linear is an ordinary least squares regressor with intercept.
type Linear struct {
	Intercept float64
	Coef      []float64
}

// FitLinear solves the (lightly damped) normal equations.
func FitLinear(samples []Sample) (*Linear, error) {
	if len(samples) == 0 {
		return nil, errors.New("no samples")
	}
	p := len(samples[0].X)
	dim := p + 1

	a := make([][]float64, dim)
	for i := range a {
		a[i] = make([]float64, dim+1)
	}
	row := make([]float64, dim)
	for _, s := range samples {
		if len(s.X) != p {
			return nil, errors.New("inconsistent feature width")
		}
		row[0] = 1
		copy(row[1:], s.X)
		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				a[i][j] += row[i] * row[j]
			}
			a[i][dim] += row[i] * s.Y
		}
	}

	trace := 0.0
	for i := 1; i < dim; i++ {
		trace += a[i][i]
	}
	if p > 0 {
		damp := ridge * trace / float64(p)
		if damp == 0 {
			damp = ridge
		}
		for i := 1; i < dim; i++ {
			a[i][i] += damp
		}
	}

	beta, err := solve(a)
	if err != nil {
		return nil, err
	}
	return &Linear{Intercept: beta[0], Coef: beta[1:]}, nil
}

func (l *Linear) Name() string { return "linear" }

func (l *Linear) Predict(x []float64) float64 {
	y := l.Intercept
	for i, c := range l.Coef {
		if i < len(x) {
			y += c * x[i]
		}
	}
	return y
}

// solve runs Gauss-Jordan elimination with partial pivoting on an augmented matrix.
func solve(a [][]float64) ([]float64, error) {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, errors.New("singular system")
		}
		a[col], a[pivot] = a[pivot], a[col]

		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			f := a[r][col] / a[col][col]
			for c := col; c <= n; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = a[i][n] / a[i][i]
	}
	return out, nil
}
