package model

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// LinearModel is an ordinary least squares regressor. It expects
// standardized features; the trainer pairs it with a StandardScaler.
type LinearModel struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

func (m *LinearModel) fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return errors.New("linear regression: empty or mismatched training data")
	}
	rows := len(x)
	cols := len(x[0])
	if rows <= cols {
		return errors.New("linear regression: not enough rows for the feature count")
	}

	// Design matrix with a leading intercept column
	a := mat.NewDense(rows, cols+1, nil)
	b := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		a.Set(i, 0, 1)
		for j := 0; j < cols; j++ {
			a.Set(i, j+1, x[i][j])
		}
		b.SetVec(i, y[i])
	}

	var beta mat.VecDense
	if err := beta.SolveVec(a, b); err != nil {
		return err
	}

	m.Intercept = beta.AtVec(0)
	m.Weights = make([]float64, cols)
	for j := 0; j < cols; j++ {
		m.Weights[j] = beta.AtVec(j + 1)
	}
	return nil
}

func (m *LinearModel) predict(v []float64) (float64, error) {
	if len(v) != len(m.Weights) {
		return 0, errors.New("linear regression: feature length mismatch")
	}
	out := m.Intercept
	for j, w := range m.Weights {
		out += w * v[j]
	}
	return out, nil
}
