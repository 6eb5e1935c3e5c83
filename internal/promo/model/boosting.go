package model

import "errors"

// BoostingModel is a gradient-boosted ensemble of shallow regression trees
// fitted to residuals, operating on raw features.
type BoostingModel struct {
	Trees        []*TreeNode `json:"trees"`
	NumTrees     int         `json:"num_trees"`
	MaxDepth     int         `json:"max_depth"`
	LearningRate float64     `json:"learning_rate"`
	Init         float64     `json:"init"`
}

func newBoostingModel() *BoostingModel {
	return &BoostingModel{NumTrees: 100, MaxDepth: 3, LearningRate: 0.1}
}

func (m *BoostingModel) fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return errors.New("gradient boosting: empty or mismatched training data")
	}

	n := len(x)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	m.Init = meanAt(y, idx)
	pred := make([]float64, n)
	for i := range pred {
		pred[i] = m.Init
	}

	residual := make([]float64, n)
	params := treeParams{maxDepth: m.MaxDepth, minLeafSize: 2}

	m.Trees = make([]*TreeNode, 0, m.NumTrees)
	for t := 0; t < m.NumTrees; t++ {
		for i := range residual {
			residual[i] = y[i] - pred[i]
		}
		tree := growTree(x, residual, idx, 0, params)
		m.Trees = append(m.Trees, tree)
		for i := range pred {
			pred[i] += m.LearningRate * tree.predict(x[i])
		}
	}
	return nil
}

func (m *BoostingModel) predict(v []float64) (float64, error) {
	if len(m.Trees) == 0 {
		return 0, errors.New("gradient boosting: model not fitted")
	}
	out := m.Init
	for _, tree := range m.Trees {
		out += m.LearningRate * tree.predict(v)
	}
	return out, nil
}
