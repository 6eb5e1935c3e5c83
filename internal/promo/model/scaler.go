package model

import "gonum.org/v1/gonum/stat"

// StandardScaler standardizes features to zero mean and unit variance.
// Fitted on the training portion only and reused verbatim at inference.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

func fitScaler(x [][]float64) *StandardScaler {
	if len(x) == 0 {
		return &StandardScaler{}
	}
	cols := len(x[0])
	s := &StandardScaler{
		Mean: make([]float64, cols),
		Std:  make([]float64, cols),
	}

	col := make([]float64, len(x))
	for j := 0; j < cols; j++ {
		for i := range x {
			col[i] = x[i][j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		s.Mean[j] = mean
		s.Std[j] = std
	}
	return s
}

// Transform standardizes one vector without mutating it
func (s *StandardScaler) Transform(v []float64) []float64 {
	if len(s.Mean) != len(v) {
		out := make([]float64, len(v))
		copy(out, v)
		return out
	}
	out := make([]float64, len(v))
	for j := range v {
		out[j] = (v[j] - s.Mean[j]) / s.Std[j]
	}
	return out
}

func (s *StandardScaler) transformAll(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i := range x {
		out[i] = s.Transform(x[i])
	}
	return out
}
