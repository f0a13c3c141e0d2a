package forest

import (
	"math/rand/v2"
	"sort"
)

// Node is one node of a decision tree. Internal nodes route samples with
// x[Feature] <= Threshold to Left; leaves carry the class distribution of the
// training rows that reached them.
type Node struct {
	Feature   int       `json:"feature"` // -1 for leaves
	Threshold float64   `json:"threshold,omitempty"`
	Left      int       `json:"left,omitempty"`
	Right     int       `json:"right,omitempty"`
	Probs     []float64 `json:"probs,omitempty"`
}

// Tree is a flattened binary decision tree; Nodes[0] is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (n *Node) leaf() bool { return n.Feature < 0 }

// probs walks x to a leaf and returns its class distribution.
func (t *Tree) probs(x []float64) []float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.leaf() {
			return n.Probs
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// treeBuilder grows a CART classification tree with Gini impurity, sampling
// maxFeatures candidate features at every split.
type treeBuilder struct {
	x           [][]float64
	y           []int
	numClasses  int
	maxFeatures int
	maxDepth    int // 0 means unlimited
	minSplit    int
	rng         *rand.Rand
	nodes       []Node
}

func (b *treeBuilder) build(rows []int) Tree {
	b.nodes = nil
	b.grow(rows, 0)
	return Tree{Nodes: b.nodes}
}

// grow appends the subtree for rows and returns its root index.
func (b *treeBuilder) grow(rows []int, depth int) int {
	counts := b.classCounts(rows)
	idx := len(b.nodes)

	if b.stop(rows, counts, depth) {
		b.nodes = append(b.nodes, b.leafNode(counts, len(rows)))
		return idx
	}

	feature, threshold, ok := b.bestSplit(rows)
	if !ok {
		b.nodes = append(b.nodes, b.leafNode(counts, len(rows)))
		return idx
	}

	var left, right []int
	for _, r := range rows {
		if b.x[r][feature] <= threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	b.nodes = append(b.nodes, Node{Feature: feature, Threshold: threshold})
	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[idx].Left = l
	b.nodes[idx].Right = r
	return idx
}

func (b *treeBuilder) stop(rows []int, counts []int, depth int) bool {
	if len(rows) < b.minSplit {
		return true
	}
	if b.maxDepth > 0 && depth >= b.maxDepth {
		return true
	}
	for _, c := range counts {
		if c == len(rows) {
			return true
		}
	}
	return false
}

func (b *treeBuilder) leafNode(counts []int, n int) Node {
	probs := make([]float64, b.numClasses)
	for k, c := range counts {
		probs[k] = float64(c) / float64(n)
	}
	return Node{Feature: -1, Probs: probs}
}

func (b *treeBuilder) classCounts(rows []int) []int {
	counts := make([]int, b.numClasses)
	for _, r := range rows {
		counts[b.y[r]]++
	}
	return counts
}

// bestSplit searches maxFeatures random features for the threshold with the
// lowest weighted Gini impurity. If the sampled features are all constant
// the remaining features are tried before giving up.
func (b *treeBuilder) bestSplit(rows []int) (feature int, threshold float64, ok bool) {
	numFeatures := len(b.x[0])
	order := b.rng.Perm(numFeatures)

	bestScore := 2.0
	sorted := make([]int, len(rows))

	for tried, f := range order {
		if tried >= b.maxFeatures && ok {
			break
		}

		copy(sorted, rows)
		sort.Slice(sorted, func(i, j int) bool { return b.x[sorted[i]][f] < b.x[sorted[j]][f] })

		left := make([]int, b.numClasses)
		right := b.classCounts(sorted)
		n := len(sorted)

		for i := 0; i < n-1; i++ {
			cls := b.y[sorted[i]]
			left[cls]++
			right[cls]--

			lo, hi := b.x[sorted[i]][f], b.x[sorted[i+1]][f]
			if lo == hi {
				continue
			}

			nl, nr := i+1, n-i-1
			score := (float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)) / float64(n)
			if score < bestScore {
				bestScore = score
				feature = f
				threshold = lo + (hi-lo)/2
				if threshold >= hi {
					threshold = lo
				}
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sum += p * p
	}
	return 1 - sum
}
