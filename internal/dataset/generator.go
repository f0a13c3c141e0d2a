// Package dataset generates the synthetic dengue training data and reads and
// writes it as CSV.
package dataset

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/couchcryptid/dengue-risk-service/internal/domain"
)

// Percentiles of the batch risk score used as label cutoffs.
const (
	HighPercentile = 0.75
	LowPercentile  = 0.30
)

// Generation bounds.
const (
	minTemp, maxTemp = 15.0, 45.0
	minHum, maxHum   = 30.0, 100.0
	minRain, maxRain = 0.0, 500.0
)

// caseDist is the simulated weekly case count per risk level.
var caseDist = map[domain.RiskLevel]struct{ mean, sd float64 }{
	domain.RiskHigh:     {150, 30},
	domain.RiskModerate: {50, 20},
	domain.RiskLow:      {5, 3},
}

// RiskScore is the weighted feature sum that drives labelling.
func RiskScore(f domain.FeatureVector) float64 {
	return 0.3*f.Temperature + 0.4*f.Humidity + 0.1*f.Rainfall
}

// Cutoffs returns the low and high label thresholds of a score batch.
func Cutoffs(scores []float64) (low, high float64) {
	if len(scores) == 0 {
		return 0, 0
	}
	sorted := slices.Clone(scores)
	slices.Sort(sorted)
	return percentile(sorted, LowPercentile), percentile(sorted, HighPercentile)
}

// percentile interpolates linearly between the two closest ranks of sorted,
// placing p at rank (n-1)*p.
func percentile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// Label classifies a score against the batch cutoffs.
func Label(score, low, high float64) domain.RiskLevel {
	switch {
	case score > high:
		return domain.RiskHigh
	case score > low:
		return domain.RiskModerate
	default:
		return domain.RiskLow
	}
}

func isMonsoon(month int) bool { return month >= 6 && month <= 9 }

// Generate draws n labelled samples. Output depends only on n and seed.
//
// Base features are drawn for every row first, then monsoon rows (June to
// September) are redrawn from wetter, warmer distributions. Labels come from
// the 30th and 75th percentiles of this batch's scores, so roughly a quarter
// of any batch is High and 30% is Low.
func Generate(n int, seed uint64) []domain.TrainingSample {
	if n <= 0 {
		return []domain.TrainingSample{}
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	months := make([]int, n)
	temp := make([]float64, n)
	hum := make([]float64, n)
	rain := make([]float64, n)

	for i := range months {
		months[i] = rng.IntN(12) + 1
	}
	for i := range temp {
		temp[i] = normal(rng, 28, 4)
	}
	for i := range hum {
		hum[i] = normal(rng, 70, 15)
	}
	for i := range rain {
		rain[i] = rng.ExpFloat64() * 50
	}

	var monsoon []int
	for i, m := range months {
		if isMonsoon(m) {
			monsoon = append(monsoon, i)
		}
	}
	for _, i := range monsoon {
		hum[i] = normal(rng, 85, 10)
	}
	for _, i := range monsoon {
		rain[i] = normal(rng, 200, 50)
	}
	for _, i := range monsoon {
		temp[i] = normal(rng, 30, 3)
	}

	samples := make([]domain.TrainingSample, n)
	scores := make([]float64, n)
	for i := range samples {
		f := domain.FeatureVector{
			Temperature: domain.Clamp(temp[i], minTemp, maxTemp),
			Humidity:    domain.Clamp(hum[i], minHum, maxHum),
			Rainfall:    domain.Clamp(rain[i], minRain, maxRain),
			Month:       months[i],
		}
		samples[i].FeatureVector = f
		scores[i] = RiskScore(f)
	}

	low, high := Cutoffs(scores)
	for i := range samples {
		level := Label(scores[i], low, high)
		d := caseDist[level]
		samples[i].RiskLevel = level
		samples[i].DengueCases = max(0, int(normal(rng, d.mean, d.sd)))
	}

	return samples
}

func normal(rng *rand.Rand, mean, sd float64) float64 {
	return rng.NormFloat64()*sd + mean
}
