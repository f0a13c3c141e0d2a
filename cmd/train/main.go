// Command train generates the synthetic dengue dataset, trains the random
// forest classifier, prints its evaluation report, and writes the model and
// dataset artifacts.
//
// Usage:
//
//	go run ./cmd/train -n 2000 -seed 42 -trees 100
//	go run ./cmd/train -from-csv historical_dengue_data.csv -model models/dengue_model.json
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/dengue-risk-service/internal/config"
	"github.com/couchcryptid/dengue-risk-service/internal/forest"
	"github.com/couchcryptid/dengue-risk-service/internal/observability"
	"github.com/couchcryptid/dengue-risk-service/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	defaults := forest.DefaultOptions()
	n := flag.Int("n", 2000, "number of synthetic samples to generate")
	seed := flag.Uint64("seed", 42, "seed for data generation, the train/test split, and training")
	trees := flag.Int("trees", defaults.Trees, "number of trees in the forest")
	maxDepth := flag.Int("max-depth", 0, "maximum tree depth, 0 for unlimited")
	minSplit := flag.Int("min-split", defaults.MinSplit, "minimum samples required to split a node")
	workers := flag.Int("workers", 0, "parallel tree builders, 0 for GOMAXPROCS")
	testFraction := flag.Float64("test-fraction", pipeline.DefaultTestFraction, "fraction of samples held out for evaluation")
	modelPath := flag.String("model", cfg.ModelPath, "output path for the model artifact")
	datasetPath := flag.String("dataset", cfg.DatasetPath, "output path for the generated dataset CSV")
	fromCSV := flag.String("from-csv", "", "train on an existing dataset CSV instead of generating one")
	flag.Parse()

	logger := observability.NewLogger(cfg)

	var source pipeline.Source = pipeline.GeneratedSource{Samples: *n, Seed: *seed}
	if *fromCSV != "" {
		source = pipeline.CSVSource{Path: *fromCSV}
		*datasetPath = ""
	}

	opts := pipeline.Options{
		DatasetPath:  *datasetPath,
		ModelPath:    *modelPath,
		TestFraction: *testFraction,
		SplitSeed:    *seed,
		Forest: forest.Options{
			Trees:    *trees,
			MaxDepth: *maxDepth,
			MinSplit: *minSplit,
			Seed:     *seed,
			Workers:  *workers,
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := pipeline.New(source, opts, logger, clockwork.NewRealClock()).Run(ctx)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	fmt.Fprintln(os.Stdout)
	fmt.Fprint(os.Stdout, res.Report.String())
	return nil
}
