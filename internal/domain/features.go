package domain

import "math"

// Conditions is a (temperature, humidity, rainfall) triple, either estimated
// from a seasonal profile or read from a live provider.
type Conditions struct {
	Temperature float64
	Humidity    float64
	Rainfall    float64
}

// FeatureVector is the classifier input.
type FeatureVector struct {
	Temperature float64
	Humidity    float64
	Rainfall    float64
	Month       int
}

// FeatureNames is the column order of FeatureVector.Values.
var FeatureNames = []string{"Temperature", "Humidity", "Rainfall", "Month"}

// WithMonth attaches a month to the conditions.
func (c Conditions) WithMonth(month int) FeatureVector {
	return FeatureVector{
		Temperature: c.Temperature,
		Humidity:    c.Humidity,
		Rainfall:    c.Rainfall,
		Month:       month,
	}
}

// Values returns the features in FeatureNames order.
func (f FeatureVector) Values() []float64 {
	return []float64{f.Temperature, f.Humidity, f.Rainfall, float64(f.Month)}
}

// TrainingSample is one labelled row of the synthetic dataset.
type TrainingSample struct {
	FeatureVector
	DengueCases int
	RiskLevel   RiskLevel
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
