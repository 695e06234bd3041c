// Command carprep prepares the car-price dataset for model training.
//
// Usage:
//
//	carprep prepare [-config carprep.yaml] [-train train.csv] [-test test.csv] [-out dir] [-plot-dir dir]
//	carprep transform [-config carprep.yaml] [-artifact preprocessor.gob] -in input.csv -out output.csv
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/carprep/compose"
	"github.com/YuminosukeSato/carprep/config"
	"github.com/YuminosukeSato/carprep/dataset"
	"github.com/YuminosukeSato/carprep/pkg/errors"
	"github.com/YuminosukeSato/carprep/pkg/log"
	"github.com/YuminosukeSato/carprep/report"
	"github.com/YuminosukeSato/carprep/transformation"
)

const usage = `usage: carprep <command> [flags]

commands:
  prepare    fit the preprocessor on the train split and transform both splits
  transform  transform a CSV file with a saved preprocessor
`

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "prepare":
		err = prepare(args[1:], stderr)
	case "transform":
		err = transform(args[1:], stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stderr, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		slog.Error("carprep failed", log.ErrAttr(err))
		return 1
	}
	return 0
}

// setup loads the configuration and installs the loggers.
func setup(configPath string, stderr io.Writer) (*config.Config, log.Logger, error) {
	// 設定の読み込みに失敗してもエラーはslogで出力する
	log.SetupLoggerWithWriter(stderr, "info")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	log.SetupLoggerWithWriter(stderr, cfg.Logging.Level)
	provider := log.NewZerologProviderWithWriter(stderr, cfg.LogLevel(), cfg.Logging.Format == "console")
	log.SetProvider(provider)
	log.RouteWarnings(provider.GetLoggerWithName("warnings"))

	return cfg, provider.GetLoggerWithName("carprep"), nil
}

func prepare(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("prepare", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration file")
	trainPath := fs.String("train", "", "train CSV (overrides data.train_path)")
	testPath := fs.String("test", "", "test CSV (overrides data.test_path)")
	outDir := fs.String("out", "", "directory for train_arr.csv and test_arr.csv (overrides data.output_dir)")
	artifact := fs.String("artifact", "", "preprocessor output path (overrides artifacts.preprocessor_path)")
	plotDir := fs.String("plot-dir", "", "write feature histograms into this directory (overrides report.plot_dir)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, err := setup(*configPath, stderr)
	if err != nil {
		return err
	}
	override(&cfg.Data.TrainPath, *trainPath)
	override(&cfg.Data.TestPath, *testPath)
	override(&cfg.Data.OutputDir, *outDir)
	override(&cfg.Artifacts.PreprocessorPath, *artifact)
	override(&cfg.Report.PlotDir, *plotDir)

	dt := transformation.NewDataTransformation(transformation.Config{
		PreprocessorPath: cfg.Artifacts.PreprocessorPath,
	})
	result, err := dt.Prepare(cfg.Data.TrainPath, cfg.Data.TestPath)
	if err != nil {
		return err
	}

	names := append(append([]string(nil), result.FeatureNames...), dataset.TargetColumn)
	outputs := []struct {
		file  string
		phase string
		X     *mat.Dense
	}{
		{"train_arr.csv", log.PhaseTraining, result.Train},
		{"test_arr.csv", log.PhaseTesting, result.Test},
	}
	for _, o := range outputs {
		path := filepath.Join(cfg.Data.OutputDir, o.file)
		if err := dataset.SaveMatrix(path, o.X, names); err != nil {
			return err
		}
		rows, _ := o.X.Dims()
		logger.Info("array written",
			log.PhaseKey, o.phase,
			log.PathKey, path,
			log.SamplesKey, rows,
			log.FeaturesKey, len(names),
		)
	}

	if cfg.Report.PlotDir != "" {
		rows, cols := result.Train.Dims()
		features := result.Train.Slice(0, rows, 0, cols-1)
		files, err := report.WriteHistograms(cfg.Report.PlotDir, features, result.FeatureNames, cfg.Report.Bins)
		if err != nil {
			return err
		}
		logger.Info("histograms written", log.PathKey, cfg.Report.PlotDir, log.FeaturesKey, len(files))
	}
	return nil
}

func transform(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("transform", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration file")
	artifact := fs.String("artifact", "", "saved preprocessor (overrides artifacts.preprocessor_path)")
	in := fs.String("in", "", "input CSV")
	out := fs.String("out", "", "output CSV")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		fs.Usage()
		return errors.NewValidationError("transform", "-in and -out are required", nil)
	}

	cfg, logger, err := setup(*configPath, stderr)
	if err != nil {
		return err
	}
	override(&cfg.Artifacts.PreprocessorPath, *artifact)

	ct, err := compose.Load(cfg.Artifacts.PreprocessorPath)
	if err != nil {
		return err
	}
	X, err := transformation.TransformFile(ct, *in)
	if err != nil {
		return err
	}
	if err := dataset.SaveMatrix(*out, X, ct.FeatureNames()); err != nil {
		return err
	}

	rows, _ := X.Dims()
	logger.Info("array written", log.PathKey, *out, log.SamplesKey, rows)
	return nil
}

func override(dst *string, flagValue string) {
	if flagValue != "" {
		*dst = flagValue
	}
}
