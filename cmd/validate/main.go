// Command validate checks the training artifacts: every dataset row satisfies
// the generation bounds, labels agree with the batch percentile cutoffs, the
// model artifact is well formed, and the model agrees with the dataset labels.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -dataset historical_dengue_data.csv \
//	  -model dengue_model.json \
//	  -min-agreement 0.85
package main

import (
	"flag"
	"fmt"
	"os"
	"slices"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/dengue-risk-service/internal/dataset"
	"github.com/couchcryptid/dengue-risk-service/internal/domain"
	"github.com/couchcryptid/dengue-risk-service/internal/forest"
)

// maxReported caps the detailed errors printed per phase.
const maxReported = 20

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	datasetPath := flag.String("dataset", sharedcfg.EnvOrDefault("DATASET_PATH", "historical_dengue_data.csv"), "path to the dataset CSV")
	modelPath := flag.String("model", sharedcfg.EnvOrDefault("MODEL_PATH", "dengue_model.json"), "path to the model artifact")
	minAgreement := flag.Float64("min-agreement", 0.85, "minimum fraction of rows the model must label like the dataset")
	flag.Parse()

	os.Exit(run(*datasetPath, *modelPath, *minAgreement))
}

func run(datasetPath, modelPath string, minAgreement float64) int {
	fmt.Println("=== Dengue Artifact Validation ===")
	fmt.Println()

	samples, err := dataset.ReadCSVFile(datasetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load dataset: %v\n", err)
		return 1
	}
	if len(samples) == 0 {
		fmt.Fprintln(os.Stderr, "FATAL: dataset has no rows")
		return 1
	}

	model, err := forest.Load(modelPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load model: %v\n", err)
		return 1
	}

	agreement, agreementPhase := validateAgreement(model, samples, minAgreement)
	phases := []*phase{
		validateRowBounds(samples),
		validateLabels(samples),
		validateModelSchema(model),
		agreementPhase,
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d, trees: %d, model agreement: %.2f%%\n", len(samples), len(model.Trees), agreement*100)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxReported {
				fmt.Printf("  ... %d more\n", len(p.errors)-maxReported)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateRowBounds(samples []domain.TrainingSample) *phase {
	p := &phase{name: "Dataset rows within generation bounds"}
	for i := range samples {
		if err := dataset.CheckSample(samples[i]); err != nil {
			p.errorf("row %d: %v", i+2, err)
		}
	}
	return p
}

// validateLabels recomputes the percentile cutoffs over the whole batch and
// checks every row's label against its risk score.
func validateLabels(samples []domain.TrainingSample) *phase {
	p := &phase{name: "Labels match batch percentile cutoffs"}

	scores := make([]float64, len(samples))
	for i := range samples {
		scores[i] = dataset.RiskScore(samples[i].FeatureVector)
	}
	low, high := dataset.Cutoffs(scores)

	for i := range samples {
		if want := dataset.Label(scores[i], low, high); want != samples[i].RiskLevel {
			p.errorf("row %d: score %.2f labelled %s, cutoffs (%.2f, %.2f) give %s",
				i+2, scores[i], samples[i].RiskLevel, low, high, want)
		}
	}
	return p
}

func validateModelSchema(m *forest.Model) *phase {
	p := &phase{name: "Model artifact schema"}
	if m.Version != forest.FormatVersion {
		p.errorf("format version %d, want %d", m.Version, forest.FormatVersion)
	}
	if !slices.Equal(m.Features, domain.FeatureNames) {
		p.errorf("features %v, want %v", m.Features, domain.FeatureNames)
	}
	if !slices.Equal(m.Classes, domain.RiskLevels) {
		p.errorf("classes %v, want %v", m.Classes, domain.RiskLevels)
	}
	if len(m.Trees) == 0 {
		p.errorf("model has no trees")
	}
	return p
}

func validateAgreement(m *forest.Model, samples []domain.TrainingSample, minAgreement float64) (float64, *phase) {
	p := &phase{name: "Model agrees with dataset labels"}

	agree := 0
	for i := range samples {
		level, _, err := m.Predict(samples[i].FeatureVector)
		if err != nil {
			p.errorf("row %d: %v", i+2, err)
			continue
		}
		if level == samples[i].RiskLevel {
			agree++
		}
	}

	agreement := float64(agree) / float64(len(samples))
	if agreement < minAgreement {
		p.errorf("agreement %.4f below minimum %.4f", agreement, minAgreement)
	}
	return agreement, p
}
