package boost

import "sort"

// node is one split or leaf in a regression tree
type node struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *node
	right     *node
}

// Tree is a depth-limited regression tree fit to the pseudo-residuals of one
// boosting round
type Tree struct {
	root *node
}

// Predict returns the leaf score for one feature vector. Values at or below
// a split threshold descend left.
func (t *Tree) Predict(x []float64) float64 {
	n := t.root
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// Leaves returns the number of leaves in the tree
func (t *Tree) Leaves() int {
	return t.root.countLeaves()
}

// Depth returns the longest root-to-leaf path, 0 for a stump
func (t *Tree) Depth() int {
	return t.root.depth()
}

func (n *node) countLeaves() int {
	if n.leaf {
		return 1
	}
	return n.left.countLeaves() + n.right.countLeaves()
}

func (n *node) depth() int {
	if n.leaf {
		return 0
	}
	l, r := n.left.depth(), n.right.depth()
	if l > r {
		return l + 1
	}
	return r + 1
}

// maxLeafScore caps leaf values so late rounds on a nearly separated dataset
// cannot push margins toward infinity
const maxLeafScore = 4.0

// treeBuilder fits one regression tree with greedy exact splits. Everything
// is deterministic: features are scanned in order, ties keep the first best
// split, and there is no row or column subsampling.
type treeBuilder struct {
	x    *Matrix
	grad []float64
	hess []float64
	cfg  Config
}

func (b *treeBuilder) build(indices []int, depth int) *node {
	if depth >= b.cfg.MaxDepth || len(indices) < 2*b.cfg.MinSamplesLeaf {
		return b.newLeaf(indices)
	}

	feature, threshold, ok := b.bestSplit(indices)
	if !ok {
		return b.newLeaf(indices)
	}

	var left, right []int
	for _, i := range indices {
		if b.x.At(i, feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &node{
		feature:   feature,
		threshold: threshold,
		left:      b.build(left, depth+1),
		right:     b.build(right, depth+1),
	}
}

// newLeaf sets the leaf value to the Newton step for logistic loss: the
// residual sum over the hessian sum, clamped to maxLeafScore
func (b *treeBuilder) newLeaf(indices []int) *node {
	var sumGrad, sumHess float64
	for _, i := range indices {
		sumGrad += b.grad[i]
		sumHess += b.hess[i]
	}

	if sumHess < 1e-6 {
		sumHess = 1e-6
	}

	value := sumGrad / sumHess
	if value > maxLeafScore {
		value = maxLeafScore
	} else if value < -maxLeafScore {
		value = -maxLeafScore
	}

	return &node{leaf: true, value: value}
}

// bestSplit scans every feature for the threshold with the largest residual
// variance reduction. Returns ok=false when no split beats staying a leaf.
func (b *treeBuilder) bestSplit(indices []int) (feature int, threshold float64, ok bool) {
	n := len(indices)

	var total float64
	for _, i := range indices {
		total += b.grad[i]
	}
	baseline := total * total / float64(n)

	bestGain := 1e-12
	bestFeature := -1
	var bestThreshold float64

	order := make([]int, n)
	for f := 0; f < b.x.Cols(); f++ {
		copy(order, indices)
		sort.SliceStable(order, func(p, q int) bool {
			return b.x.At(order[p], f) < b.x.At(order[q], f)
		})

		var leftSum float64
		for k := 0; k < n-1; k++ {
			leftSum += b.grad[order[k]]

			nLeft := k + 1
			nRight := n - nLeft
			if nLeft < b.cfg.MinSamplesLeaf || nRight < b.cfg.MinSamplesLeaf {
				continue
			}

			v, next := b.x.At(order[k], f), b.x.At(order[k+1], f)
			if v == next {
				continue
			}

			rightSum := total - leftSum
			gain := leftSum*leftSum/float64(nLeft) + rightSum*rightSum/float64(nRight) - baseline
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (v + next) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}
