// Package carprep prepares the car-price dataset for a downstream regression model.
//
// carprep loads train and test CSV files, derives the manufacturer from the
// free-text car name, fixes known misspellings of manufacturer names and applies
// a column-wise preprocessing pipeline that is fitted on the training split only.
// The fitted transformer is saved so that new data can be transformed at
// inference time without access to the training data.
//
// # Features
//
// - scikit-learn compatible transformers: SimpleImputer, OneHotEncoder, StandardScaler
// - ColumnTransformer routing named columns of a go-gota DataFrame to numeric and categorical branches
// - Atomic gob persistence of the fitted transformer
// - Structured errors with stack traces (cockroachdb/errors) and structured logging (slog, zerolog)
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/carprep/transformation"
//	)
//
//	func main() {
//	    dt := transformation.NewDataTransformation(transformation.DefaultConfig())
//	    result, err := dt.Prepare("artifacts/train.csv", "artifacts/test.csv")
//	    if err != nil {
//	        log.Fatalf("%+v", err)
//	    }
//	    fmt.Println(result.Train.Dims())
//	    fmt.Println(result.PreprocessorPath)
//	}
//
// The same flow is available from the command line:
//
//	carprep prepare -train artifacts/train.csv -test artifacts/test.csv -out artifacts
//	carprep transform -artifact artifacts/preprocessor.gob -in new.csv -out new_arr.csv
//
// # Package Structure
//
//   - dataset: CSV loading, column roles, manufacturer derivation and normalization
//   - preprocessing: imputers, one-hot encoder and scaler
//   - pipeline: sequential chains of transformers
//   - compose: ColumnTransformer and its branches
//   - transformation: the train/test preparation flow
//   - report: histograms of transformed features
//   - config: YAML and environment configuration
//   - core/model: transformer interfaces, fitted state and persistence
//   - pkg/errors, pkg/log: error types and logging
//
// # Error Handling
//
// Every failure of the preparation flow is returned as *errors.TransformationError,
// which records the failing stage and wraps the cause:
//
//	result, err := dt.Prepare(trainPath, testPath)
//	var trErr *errors.TransformationError
//	if errors.As(err, &trErr) {
//	    slog.Error("preprocessing failed", "stage", trErr.Stage, log.ErrAttr(err))
//	}
package carprep
