package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dengue-risk-service/internal/dataset"
	"github.com/couchcryptid/dengue-risk-service/internal/domain"
	"github.com/couchcryptid/dengue-risk-service/internal/forest"
)

func trainedArtifacts(t *testing.T) (datasetPath, modelPath string) {
	t.Helper()
	dir := t.TempDir()
	samples := dataset.Generate(800, 42)

	opts := forest.DefaultOptions()
	opts.Trees = 20
	model, err := forest.Train(samples, opts)
	require.NoError(t, err)

	datasetPath = filepath.Join(dir, "data.csv")
	modelPath = filepath.Join(dir, "model.json")
	require.NoError(t, dataset.WriteCSVFile(datasetPath, samples))
	require.NoError(t, model.Save(modelPath))
	return datasetPath, modelPath
}

func TestRun_ValidArtifactsPass(t *testing.T) {
	datasetPath, modelPath := trainedArtifacts(t)
	assert.Equal(t, 0, run(datasetPath, modelPath, 0.85))
}

func TestRun_MissingArtifacts(t *testing.T) {
	datasetPath, modelPath := trainedArtifacts(t)
	missing := filepath.Join(t.TempDir(), "missing")

	assert.Equal(t, 1, run(missing, modelPath, 0.85))
	assert.Equal(t, 1, run(datasetPath, missing, 0.85))
}

func TestRun_UnreachableAgreementFails(t *testing.T) {
	datasetPath, modelPath := trainedArtifacts(t)
	assert.Equal(t, 1, run(datasetPath, modelPath, 1.01))
}

func TestValidateRowBounds(t *testing.T) {
	samples := dataset.Generate(10, 1)
	samples[2].Rainfall = -1
	samples[7].Month = 13

	p := validateRowBounds(samples)
	require.Len(t, p.errors, 2)
	assert.Contains(t, p.errors[0], "row 4")
	assert.Contains(t, p.errors[1], "row 9")
}

func TestValidateLabels_DetectsRelabelledRow(t *testing.T) {
	samples := dataset.Generate(200, 3)
	assert.True(t, validateLabels(samples).passed())

	for i := range samples {
		if samples[i].RiskLevel == domain.RiskHigh {
			samples[i].RiskLevel = domain.RiskLow
			break
		}
	}
	assert.Len(t, validateLabels(samples).errors, 1)
}

func TestValidateLabels_SmallBatchUsesInterpolatedCutoffs(t *testing.T) {
	// Scores are 16.5+k for k in 1..10, so the cuts land at 20.2 and 24.25.
	samples := make([]domain.TrainingSample, 10)
	for i := range samples {
		k := i + 1
		level := domain.RiskLow
		switch {
		case k >= 8:
			level = domain.RiskHigh
		case k >= 4:
			level = domain.RiskModerate
		}
		samples[i] = domain.TrainingSample{
			FeatureVector: domain.FeatureVector{Temperature: 15, Humidity: 30, Rainfall: float64(10 * k), Month: 1},
			RiskLevel:     level,
		}
	}

	p := validateLabels(samples)
	assert.True(t, p.passed(), "errors: %v", p.errors)

	samples[7].RiskLevel = domain.RiskModerate
	assert.Len(t, validateLabels(samples).errors, 1)
}

func TestValidateModelSchema(t *testing.T) {
	m := &forest.Model{Version: 99, Features: []string{"x"}, Classes: []domain.RiskLevel{domain.RiskLow}}
	assert.Len(t, validateModelSchema(m).errors, 4)
}
