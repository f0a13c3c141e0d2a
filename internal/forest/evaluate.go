package forest

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/dengue-risk-service/internal/domain"
)

// Split shuffles samples with seed and holds out testFraction of them,
// rounded up, for evaluation.
func Split(samples []domain.TrainingSample, testFraction float64, seed uint64) (train, test []domain.TrainingSample) {
	n := len(samples)
	nTest := int(math.Ceil(float64(n) * testFraction))
	nTest = min(max(nTest, 0), n)

	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(n)

	test = make([]domain.TrainingSample, 0, nTest)
	train = make([]domain.TrainingSample, 0, n-nTest)
	for i, p := range perm {
		if i < nTest {
			test = append(test, samples[p])
		} else {
			train = append(train, samples[p])
		}
	}
	return train, test
}

// ClassMetrics holds precision, recall and F1 for one label.
type ClassMetrics struct {
	Label     domain.RiskLevel `json:"label"`
	Precision float64          `json:"precision"`
	Recall    float64          `json:"recall"`
	F1        float64          `json:"f1"`
	Support   int              `json:"support"`
}

// Report summarizes held-out performance. Confusion rows are actual labels
// and columns predicted labels, both in Labels order.
type Report struct {
	Total     int                `json:"total"`
	Accuracy  float64            `json:"accuracy"`
	Labels    []domain.RiskLevel `json:"labels"`
	Classes   []ClassMetrics     `json:"classes"`
	Confusion [][]int            `json:"confusion"`
}

// Evaluate scores the model against labelled samples.
func Evaluate(m *Model, samples []domain.TrainingSample) (Report, error) {
	labels := slices.Clone(m.Classes)
	for i := range samples {
		if !slices.Contains(labels, samples[i].RiskLevel) {
			labels = append(labels, samples[i].RiskLevel)
		}
	}
	slices.Sort(labels)

	idx := make(map[domain.RiskLevel]int, len(labels))
	for i, l := range labels {
		idx[l] = i
	}

	confusion := make([][]int, len(labels))
	for i := range confusion {
		confusion[i] = make([]int, len(labels))
	}

	correct := 0
	for i := range samples {
		pred, _, err := m.Predict(samples[i].FeatureVector)
		if err != nil {
			return Report{}, err
		}
		actual := samples[i].RiskLevel
		confusion[idx[actual]][idx[pred]]++
		if pred == actual {
			correct++
		}
	}

	r := Report{
		Total:     len(samples),
		Labels:    labels,
		Confusion: confusion,
	}
	if len(samples) > 0 {
		r.Accuracy = float64(correct) / float64(len(samples))
	}

	for k, l := range labels {
		tp := confusion[k][k]
		var predicted, actual int
		for j := range labels {
			predicted += confusion[j][k]
			actual += confusion[k][j]
		}
		cm := ClassMetrics{
			Label:     l,
			Precision: ratio(tp, predicted),
			Recall:    ratio(tp, actual),
			Support:   actual,
		}
		if cm.Precision+cm.Recall > 0 {
			cm.F1 = 2 * cm.Precision * cm.Recall / (cm.Precision + cm.Recall)
		}
		r.Classes = append(r.Classes, cm)
	}
	return r, nil
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// MacroF1 is the unweighted mean F1 across labels.
func (r Report) MacroF1() float64 {
	if len(r.Classes) == 0 {
		return 0
	}
	f1 := make([]float64, len(r.Classes))
	for i, c := range r.Classes {
		f1[i] = c.F1
	}
	return stat.Mean(f1, nil)
}

// WeightedF1 is the support-weighted mean F1 across labels.
func (r Report) WeightedF1() float64 {
	if r.Total == 0 {
		return 0
	}
	f1 := make([]float64, len(r.Classes))
	w := make([]float64, len(r.Classes))
	for i, c := range r.Classes {
		f1[i] = c.F1
		w[i] = float64(c.Support)
	}
	return stat.Mean(f1, w)
}

// String renders the report as a classification table followed by the
// confusion matrix.
func (r Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Model Accuracy: %.2f%%\n\n", r.Accuracy*100)
	fmt.Fprintf(&b, "%12s %10s %10s %10s %10s\n", "", "precision", "recall", "f1-score", "support")
	for _, c := range r.Classes {
		fmt.Fprintf(&b, "%12s %10.2f %10.2f %10.2f %10d\n", c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	fmt.Fprintf(&b, "\n%12s %10s %10s %10.2f %10d\n", "accuracy", "", "", r.Accuracy, r.Total)
	fmt.Fprintf(&b, "%12s %10s %10s %10.2f %10d\n", "macro avg", "", "", r.MacroF1(), r.Total)
	fmt.Fprintf(&b, "%12s %10s %10s %10.2f %10d\n", "weighted avg", "", "", r.WeightedF1(), r.Total)

	b.WriteString("\nConfusion Matrix:\n")
	fmt.Fprintf(&b, "%10s", "")
	for _, l := range r.Labels {
		fmt.Fprintf(&b, " %9s", l)
	}
	b.WriteByte('\n')
	for i, row := range r.Confusion {
		fmt.Fprintf(&b, "%10s", r.Labels[i])
		for _, v := range row {
			fmt.Fprintf(&b, " %9d", v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
