package model

import (
	"errors"
	"math/rand"
)

// ForestModel is a bagged ensemble of regression trees operating on raw
// (unscaled) features.
type ForestModel struct {
	Trees    []*TreeNode `json:"trees"`
	NumTrees int         `json:"num_trees"`
	MaxDepth int         `json:"max_depth"`
	Seed     int64       `json:"seed"`
}

func newForestModel(seed int64) *ForestModel {
	return &ForestModel{NumTrees: 100, MaxDepth: 8, Seed: seed}
}

func (m *ForestModel) fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return errors.New("random forest: empty or mismatched training data")
	}

	rng := rand.New(rand.NewSource(m.Seed))
	params := treeParams{maxDepth: m.MaxDepth, minLeafSize: 2}
	n := len(x)

	m.Trees = make([]*TreeNode, 0, m.NumTrees)
	for t := 0; t < m.NumTrees; t++ {
		// Bootstrap sample with replacement
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		m.Trees = append(m.Trees, growTree(x, y, idx, 0, params))
	}
	return nil
}

func (m *ForestModel) predict(v []float64) (float64, error) {
	if len(m.Trees) == 0 {
		return 0, errors.New("random forest: model not fitted")
	}
	var sum float64
	for _, tree := range m.Trees {
		sum += tree.predict(v)
	}
	return sum / float64(len(m.Trees)), nil
}
