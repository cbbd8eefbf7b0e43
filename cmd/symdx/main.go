// Command symdx trains and evaluates the disease-diagnosis classifiers on a
// patient symptom dataset.
//
// Usage:
//
//	symdx -model nb -variant nlice -data patients.csv -symptom-db symptoms.json -out results/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aimedlab/symdx/ensemble"
	symlog "github.com/aimedlab/symdx/pkg/log"
	"github.com/aimedlab/symdx/train"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "symdx: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("symdx", flag.ContinueOnError)
	modelName := fs.String("model", "nb", "classifier to train: nb or rf")
	variantName := fs.String("variant", "basic", "encoding variant: basic, nlice or advanced")
	dataPath := fs.String("data", "", "patient CSV file")
	symptomDB := fs.String("symptom-db", "", "symptom database JSON file")
	outputDir := fs.String("out", "results", "output directory for scores and model artifacts")
	runName := fs.String("run-name", "", "name prefix for output files")
	cvSplits := fs.Int("cv", 5, "number of stratified shuffle splits")
	testSize := fs.Float64("test-size", 0.2, "held-out fraction per split")
	seed := fs.Uint64("seed", 42, "random seed")
	trees := fs.Int("trees", 100, "random forest: number of trees")
	maxDepth := fs.Int("max-depth", 10, "random forest: maximum tree depth")
	workers := fs.Int("workers", 4, "random forest: parallel tree builders")
	logLevel := fs.String("loglevel", "info", "log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dataPath == "" || *symptomDB == "" {
		fs.Usage()
		return fmt.Errorf("-data and -symptom-db are required")
	}

	symlog.SetupLogger(*logLevel)

	variant, err := train.ParseVariant(*variantName)
	if err != nil {
		return err
	}

	cfg := train.Config{
		Variant:        variant,
		DataPath:       *dataPath,
		VocabularyPath: *symptomDB,
		OutputDir:      *outputDir,
		RunName:        *runName,
		CVSplits:       *cvSplits,
		TestSize:       *testSize,
		Seed:           *seed,
		RF: ensemble.RFParams{
			NTrees:     *trees,
			MaxDepth:   *maxDepth,
			MaxWorkers: *workers,
			Seed:       int64(*seed),
		},
	}

	var result *train.RunResult
	switch *modelName {
	case "nb":
		result, err = train.TrainNaiveBayes(cfg)
	case "rf":
		result, err = train.TrainRandomForest(cfg)
	default:
		return fmt.Errorf("unknown model %q (want nb or rf)", *modelName)
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s %s: accuracy %.4f ± %.4f (fold %d kept)\n",
		result.ModelName, result.Variant,
		result.Metrics["accuracy"].Mean, result.Metrics["accuracy"].Std,
		result.SelectedFold)
	fmt.Printf("model:  %s\nscores: %s\n", result.ModelPath, result.ResultPath)
	return nil
}
