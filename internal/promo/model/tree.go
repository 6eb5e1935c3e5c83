package model

import "sort"

// TreeNode is one node of a CART regression tree. Leaves carry the mean
// target of the rows that reached them; internal nodes split on
// feature <= threshold.
type TreeNode struct {
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
	Value     float64   `json:"value"`
	Leaf      bool      `json:"leaf,omitempty"`
}

type treeParams struct {
	maxDepth    int
	minLeafSize int
}

// growTree builds a regression tree over the rows indexed by idx, choosing
// at each node the split with the largest sum-of-squares reduction.
func growTree(x [][]float64, y []float64, idx []int, depth int, params treeParams) *TreeNode {
	mean := meanAt(y, idx)
	if depth >= params.maxDepth || len(idx) < 2*params.minLeafSize {
		return &TreeNode{Value: mean, Leaf: true}
	}

	feature, threshold, ok := bestSplit(x, y, idx, params.minLeafSize)
	if !ok {
		return &TreeNode{Value: mean, Leaf: true}
	}

	var left, right []int
	for _, i := range idx {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < params.minLeafSize || len(right) < params.minLeafSize {
		return &TreeNode{Value: mean, Leaf: true}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Value:     mean,
		Left:      growTree(x, y, left, depth+1, params),
		Right:     growTree(x, y, right, depth+1, params),
	}
}

// bestSplit scans every feature with a single sorted pass, tracking left and
// right partial sums to score candidate thresholds in O(n) per feature.
func bestSplit(x [][]float64, y []float64, idx []int, minLeaf int) (feature int, threshold float64, ok bool) {
	n := len(idx)
	if n < 2*minLeaf {
		return 0, 0, false
	}

	var totalSum, totalSq float64
	for _, i := range idx {
		totalSum += y[i]
		totalSq += y[i] * y[i]
	}
	baseSSE := totalSq - totalSum*totalSum/float64(n)

	bestGain := 0.0
	sorted := make([]int, n)

	numFeats := len(x[idx[0]])
	for f := 0; f < numFeats; f++ {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool { return x[sorted[a]][f] < x[sorted[b]][f] })

		var leftSum, leftSq float64
		for pos := 0; pos < n-1; pos++ {
			i := sorted[pos]
			leftSum += y[i]
			leftSq += y[i] * y[i]

			// Only split between distinct feature values
			if x[i][f] == x[sorted[pos+1]][f] {
				continue
			}
			leftN := pos + 1
			rightN := n - leftN
			if leftN < minLeaf || rightN < minLeaf {
				continue
			}

			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/float64(leftN)) +
				(rightSq - rightSum*rightSum/float64(rightN))
			gain := baseSSE - sse
			if gain > bestGain {
				bestGain = gain
				feature = f
				threshold = (x[i][f] + x[sorted[pos+1]][f]) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func (t *TreeNode) predict(v []float64) float64 {
	node := t
	for !node.Leaf && node.Left != nil && node.Right != nil {
		if v[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}
