// Package forest implements the dengue risk classifier: a bagged ensemble of
// CART decision trees (a random forest) over the four weather features.
package forest

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"slices"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/couchcryptid/dengue-risk-service/internal/domain"
)

// FormatVersion is written into every saved model and checked on load.
const FormatVersion = 1

// Options controls training.
type Options struct {
	Trees       int    // number of trees, default 100
	MaxFeatures int    // features sampled per split, default sqrt(#features)
	MaxDepth    int    // 0 grows trees until leaves are pure
	MinSplit    int    // minimum rows to split a node, default 2
	Seed        uint64 // training is reproducible for a fixed seed
	Workers     int    // parallel tree builders, default GOMAXPROCS
}

// DefaultOptions mirrors a stock random forest: 100 fully grown trees.
func DefaultOptions() Options {
	return Options{Trees: 100, MinSplit: 2, Seed: 42}
}

func (o Options) withDefaults(numFeatures int) Options {
	if o.Trees <= 0 {
		o.Trees = 100
	}
	if o.MaxFeatures <= 0 || o.MaxFeatures > numFeatures {
		o.MaxFeatures = max(1, int(math.Sqrt(float64(numFeatures))))
	}
	if o.MinSplit < 2 {
		o.MinSplit = 2
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// Model is a trained forest. It is immutable after Train or Load and safe for
// concurrent use.
type Model struct {
	Version  int                `json:"version"`
	Classes  []domain.RiskLevel `json:"classes"`
	Features []string           `json:"features"`
	Trees    []Tree             `json:"trees"`
}

// Train fits a forest on samples. Each tree sees a bootstrap resample of the
// rows; class labels are the sorted distinct levels present in samples.
func Train(samples []domain.TrainingSample, opts Options) (*Model, error) {
	if len(samples) == 0 {
		return nil, errors.New("train: empty dataset")
	}

	classes := distinctLevels(samples)
	classIdx := make(map[domain.RiskLevel]int, len(classes))
	for i, c := range classes {
		classIdx[c] = i
	}

	x := make([][]float64, len(samples))
	y := make([]int, len(samples))
	for i := range samples {
		x[i] = samples[i].Values()
		y[i] = classIdx[samples[i].RiskLevel]
	}

	opts = opts.withDefaults(len(domain.FeatureNames))

	// Per-tree seeds are drawn up front so the result does not depend on
	// worker scheduling.
	master := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	seeds := make([]uint64, opts.Trees)
	for i := range seeds {
		seeds[i] = master.Uint64()
	}

	trees := make([]Tree, opts.Trees)
	jobs := make(chan int)
	var wg sync.WaitGroup
	for range min(opts.Workers, opts.Trees) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				trees[i] = growTree(x, y, len(classes), seeds[i], opts)
			}
		}()
	}
	for i := range trees {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return &Model{
		Version:  FormatVersion,
		Classes:  classes,
		Features: slices.Clone(domain.FeatureNames),
		Trees:    trees,
	}, nil
}

func growTree(x [][]float64, y []int, numClasses int, seed uint64, opts Options) Tree {
	rng := rand.New(rand.NewPCG(seed, seed))

	rows := make([]int, len(x))
	for i := range rows {
		rows[i] = rng.IntN(len(x))
	}

	b := &treeBuilder{
		x:           x,
		y:           y,
		numClasses:  numClasses,
		maxFeatures: opts.MaxFeatures,
		maxDepth:    opts.MaxDepth,
		minSplit:    opts.MinSplit,
		rng:         rng,
	}
	return b.build(rows)
}

func distinctLevels(samples []domain.TrainingSample) []domain.RiskLevel {
	seen := map[domain.RiskLevel]bool{}
	var out []domain.RiskLevel
	for i := range samples {
		l := samples[i].RiskLevel
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	slices.Sort(out)
	return out
}

// PredictProba returns the mean class distribution over all trees, indexed
// like m.Classes.
func (m *Model) PredictProba(f domain.FeatureVector) []float64 {
	x := f.Values()
	sum := make([]float64, len(m.Classes))
	for i := range m.Trees {
		floats.Add(sum, m.Trees[i].probs(x))
	}
	floats.Scale(1/float64(len(m.Trees)), sum)
	return sum
}

// Predict returns the most probable risk level and its probability as a
// percentage rounded to two decimals. A nil model yields
// domain.ErrModelUnavailable.
func (m *Model) Predict(f domain.FeatureVector) (domain.RiskLevel, float64, error) {
	if m == nil || len(m.Trees) == 0 {
		return "", 0, domain.ErrModelUnavailable
	}
	probs := m.PredictProba(f)
	best := floats.MaxIdx(probs)
	return m.Classes[best], domain.Round2(probs[best] * 100), nil
}

// validate checks the structure of a decoded model.
func (m *Model) validate() error {
	if m.Version != FormatVersion {
		return fmt.Errorf("unsupported model version %d (want %d)", m.Version, FormatVersion)
	}
	if len(m.Classes) == 0 {
		return errors.New("model has no classes")
	}
	for _, c := range m.Classes {
		if _, err := domain.ParseRiskLevel(string(c)); err != nil {
			return err
		}
	}
	if !slices.Equal(m.Features, domain.FeatureNames) {
		return fmt.Errorf("model features %v do not match %v", m.Features, domain.FeatureNames)
	}
	if len(m.Trees) == 0 {
		return errors.New("model has no trees")
	}
	for ti := range m.Trees {
		if err := m.validateTree(&m.Trees[ti]); err != nil {
			return fmt.Errorf("tree %d: %w", ti, err)
		}
	}
	return nil
}

func (m *Model) validateTree(t *Tree) error {
	n := len(t.Nodes)
	if n == 0 {
		return errors.New("empty tree")
	}
	for i := range t.Nodes {
		node := &t.Nodes[i]
		if node.leaf() {
			if len(node.Probs) != len(m.Classes) {
				return fmt.Errorf("node %d: %d probabilities for %d classes", i, len(node.Probs), len(m.Classes))
			}
			continue
		}
		if node.Feature >= len(m.Features) {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.Feature)
		}
		// Children always follow their parent, which also rules out cycles.
		if node.Left <= i || node.Left >= n || node.Right <= i || node.Right >= n {
			return fmt.Errorf("node %d: child index out of range", i)
		}
	}
	return nil
}
