// Package pipeline runs the offline training workflow: load or generate a
// dataset, persist it, split it, train the forest, evaluate it, and save the
// model artifact.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/dengue-risk-service/internal/dataset"
	"github.com/couchcryptid/dengue-risk-service/internal/domain"
	"github.com/couchcryptid/dengue-risk-service/internal/forest"
)

// DefaultTestFraction holds out 20% of the dataset for evaluation.
const DefaultTestFraction = 0.2

// Source supplies the labelled dataset.
type Source interface {
	Load() ([]domain.TrainingSample, error)
}

// Options configures a training run. Empty paths skip the corresponding
// artifact.
type Options struct {
	DatasetPath  string
	ModelPath    string
	TestFraction float64
	SplitSeed    uint64
	Forest       forest.Options
}

// Result is the outcome of a training run.
type Result struct {
	Model     *forest.Model
	Report    forest.Report
	Samples   int
	TrainSize int
	TestSize  int
}

// Pipeline orchestrates one training run.
type Pipeline struct {
	source Source
	opts   Options
	logger *slog.Logger
	clock  clockwork.Clock
}

// New creates a Pipeline reading from source.
func New(source Source, opts Options, logger *slog.Logger, clock clockwork.Clock) *Pipeline {
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		opts.TestFraction = DefaultTestFraction
	}
	return &Pipeline{source: source, opts: opts, logger: logger, clock: clock}
}

// Run executes every stage in order. Cancellation is checked between stages.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	start := p.clock.Now()
	p.logger.Info("training pipeline started", "source", fmt.Sprint(p.source), "trees", p.opts.Forest.Trees)

	samples, err := p.source.Load()
	if err != nil {
		return Result{}, fmt.Errorf("load dataset: %w", err)
	}
	if len(samples) == 0 {
		return Result{}, errors.New("load dataset: no samples")
	}
	p.logger.Info("dataset loaded", "samples", len(samples), "labels", countLabels(samples))

	if p.opts.DatasetPath != "" {
		if err := dataset.WriteCSVFile(p.opts.DatasetPath, samples); err != nil {
			return Result{}, fmt.Errorf("save dataset: %w", err)
		}
		p.logger.Info("dataset saved", "path", p.opts.DatasetPath)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	train, test := forest.Split(samples, p.opts.TestFraction, p.opts.SplitSeed)
	stage := p.clock.Now()
	model, err := forest.Train(train, p.opts.Forest)
	if err != nil {
		return Result{}, fmt.Errorf("train: %w", err)
	}
	p.logger.Info("model trained", "train_size", len(train), "trees", len(model.Trees), "duration", p.clock.Since(stage))
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	report, err := forest.Evaluate(model, test)
	if err != nil {
		return Result{}, fmt.Errorf("evaluate: %w", err)
	}
	p.logger.Info("model evaluated",
		"test_size", len(test),
		"accuracy", report.Accuracy,
		"macro_f1", report.MacroF1(),
		"weighted_f1", report.WeightedF1(),
	)

	if p.opts.ModelPath != "" {
		if err := model.Save(p.opts.ModelPath); err != nil {
			return Result{}, fmt.Errorf("save model: %w", err)
		}
		p.logger.Info("model saved", "path", p.opts.ModelPath)
	}

	p.logger.Info("training pipeline finished", "duration", p.clock.Since(start))
	return Result{
		Model:     model,
		Report:    report,
		Samples:   len(samples),
		TrainSize: len(train),
		TestSize:  len(test),
	}, nil
}

func countLabels(samples []domain.TrainingSample) map[domain.RiskLevel]int {
	counts := make(map[domain.RiskLevel]int, len(domain.RiskLevels))
	for i := range samples {
		counts[samples[i].RiskLevel]++
	}
	return counts
}
