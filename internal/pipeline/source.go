package pipeline

import (
	"fmt"

	"github.com/couchcryptid/dengue-risk-service/internal/dataset"
	"github.com/couchcryptid/dengue-risk-service/internal/domain"
)

// GeneratedSource draws a synthetic dataset.
type GeneratedSource struct {
	Samples int
	Seed    uint64
}

func (s GeneratedSource) Load() ([]domain.TrainingSample, error) {
	if s.Samples <= 0 {
		return nil, fmt.Errorf("generate dataset: sample count must be positive, got %d", s.Samples)
	}
	return dataset.Generate(s.Samples, s.Seed), nil
}

func (s GeneratedSource) String() string {
	return fmt.Sprintf("generated(n=%d, seed=%d)", s.Samples, s.Seed)
}

// CSVSource reads a previously written dataset. Every row must satisfy the
// generation bounds and carry a known label.
type CSVSource struct {
	Path string
}

func (s CSVSource) Load() ([]domain.TrainingSample, error) {
	samples, err := dataset.ReadCSVFile(s.Path)
	if err != nil {
		return nil, err
	}
	for i := range samples {
		if err := dataset.CheckSample(samples[i]); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", s.Path, i+2, err)
		}
	}
	return samples, nil
}

func (s CSVSource) String() string {
	return "csv(" + s.Path + ")"
}
