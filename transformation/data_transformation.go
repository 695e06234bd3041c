package transformation

import (
	"path/filepath"
	"time"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/carprep/compose"
	"github.com/YuminosukeSato/carprep/dataset"
	"github.com/YuminosukeSato/carprep/pkg/errors"
	"github.com/YuminosukeSato/carprep/pkg/log"
)

// DefaultPreprocessorPath は学習済み変換器の保存先
var DefaultPreprocessorPath = filepath.Join("artifacts", "preprocessor.gob")

// Config は DataTransformation の設定
type Config struct {
	// PreprocessorPath は学習済み変換器の保存先
	PreprocessorPath string
}

// DefaultConfig はデフォルトの設定を返す
func DefaultConfig() Config {
	return Config{PreprocessorPath: DefaultPreprocessorPath}
}

// Result は Prepare の結果
type Result struct {
	// Train と Test は変換後の特徴量の後ろに目的変数を1列追加した行列
	Train *mat.Dense
	Test  *mat.Dense

	// PreprocessorPath は保存した変換器のパス
	PreprocessorPath string

	// FeatureNames は目的変数を除く列名
	FeatureNames []string
}

// DataTransformation は学習・テストデータの前処理を行う
type DataTransformation struct {
	config Config
	logger log.Logger
}

// NewDataTransformation は新しいDataTransformationを作成する
func NewDataTransformation(config Config) *DataTransformation {
	if config.PreprocessorPath == "" {
		config.PreprocessorPath = DefaultPreprocessorPath
	}
	return &DataTransformation{
		config: config,
		logger: log.GetLoggerWithName("DataTransformation"),
	}
}

// Config は設定を返す
func (dt *DataTransformation) Config() Config {
	return dt.config
}

// Prepare は学習データで変換器を学習し、学習・テストデータを変換して変換器を保存する。
//
// テストデータの統計量は変換器に一切影響しない。いずれかの段階で失敗した場合は
// 結果を返さず、失敗した段階を記録した TransformationError を返す。
func (dt *DataTransformation) Prepare(trainPath, testPath string) (result *Result, err error) {
	const op = "DataTransformation.Prepare"
	stage := "load data"
	start := time.Now()
	defer func() {
		if err != nil {
			err = errors.NewTransformationError(op, stage, err)
			dt.logger.Error("data transformation failed", err, log.StageKey, stage)
			result = nil
			return
		}
		dt.logger.Info("data transformation completed", log.DurationMsKey, time.Since(start).Milliseconds())
	}()
	defer errors.Recover(&err, op)

	trainDF, err := dataset.Load(trainPath)
	if err != nil {
		return nil, err
	}
	testDF, err := dataset.Load(testPath)
	if err != nil {
		return nil, err
	}
	dt.logger.Debug("data loaded", log.PhaseKey, log.PhaseTraining, log.PathKey, trainPath, log.SamplesKey, trainDF.Nrow())
	dt.logger.Debug("data loaded", log.PhaseKey, log.PhaseTesting, log.PathKey, testPath, log.SamplesKey, testDF.Nrow())
	dt.logger.Info("Read train and test data completed")

	stage = "build transformer"
	dt.logger.Info("Obtaining pre-processing object")
	ct, err := BuildTransformer()
	if err != nil {
		return nil, err
	}

	stage = "prepare columns"
	dt.logger.Info("Removing unwanted columns from the dataset and creating company column")
	if trainDF, err = prepareFrame(trainDF, true); err != nil {
		return nil, err
	}
	if testDF, err = prepareFrame(testDF, true); err != nil {
		return nil, err
	}

	stage = "split target"
	trainX, trainY, err := dataset.SplitTarget(trainDF, dataset.TargetColumn)
	if err != nil {
		return nil, err
	}
	testX, testY, err := dataset.SplitTarget(testDF, dataset.TargetColumn)
	if err != nil {
		return nil, err
	}

	stage = "fit transform train"
	dt.logger.Info("Applying preprocessing object on training dataframe and testing dataframe",
		log.OperationKey, log.OperationFitTransform,
	)
	trainFeatures, err := ct.FitTransform(trainX)
	if err != nil {
		return nil, err
	}
	r, c := trainFeatures.Dims()
	if err = errors.CheckMatrix(op, trainFeatures, r, c); err != nil {
		return nil, err
	}

	stage = "transform test"
	testFeatures, err := ct.Transform(testX)
	if err != nil {
		return nil, err
	}

	stage = "persist transformer"
	if err = ct.Save(dt.config.PreprocessorPath); err != nil {
		return nil, err
	}
	dt.logger.Info("Saved pre-processing object",
		log.PathKey, dt.config.PreprocessorPath,
		log.FeaturesKey, c,
	)

	return &Result{
		Train:            appendColumn(trainFeatures, trainY),
		Test:             appendColumn(testFeatures, testY),
		PreprocessorPath: dt.config.PreprocessorPath,
		FeatureNames:     ct.FeatureNames(),
	}, nil
}

// TransformFile は保存済みの変換器でCSVファイルを変換する。
// 除外列と目的変数の列は存在すれば削除される。
func TransformFile(ct *compose.ColumnTransformer, path string) (X *mat.Dense, err error) {
	const op = "TransformFile"
	stage := "load data"
	defer func() {
		if err != nil {
			err = errors.NewTransformationError(op, stage, err)
			X = nil
		}
	}()
	defer errors.Recover(&err, op)

	df, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}

	stage = "prepare columns"
	if df, err = prepareFrame(df, false); err != nil {
		return nil, err
	}
	if df, err = dataset.DropIfPresent(df, dataset.TargetColumn); err != nil {
		return nil, err
	}

	stage = "transform"
	if X, err = ct.Transform(df); err != nil {
		return nil, err
	}
	log.GetLoggerWithName("DataTransformation").Info("Transformed input file",
		log.OperationKey, log.OperationTransform,
		log.PhaseKey, log.PhaseInference,
		log.PathKey, path,
		log.SamplesKey, df.Nrow(),
	)
	return X, nil
}

// prepareFrame は company 列を作り、除外列を削除して表記ゆれを直す。
// strict でない場合、CarName が無くても company 列があればそれを使い、
// 除外列は存在するものだけを削除する。
func prepareFrame(df dataframe.DataFrame, strict bool) (dataframe.DataFrame, error) {
	var err error
	if strict || dataset.HasColumn(df, dataset.NameColumn) || !dataset.HasColumn(df, dataset.ManufacturerColumn) {
		if df, err = dataset.DeriveManufacturer(df); err != nil {
			return df, err
		}
	}

	if strict {
		df, err = dataset.DropExcluded(df)
	} else {
		df, err = dataset.DropIfPresent(df, dataset.ExcludedColumns...)
	}
	if err != nil {
		return df, err
	}

	return dataset.NormalizeManufacturer(df)
}

// appendColumn は X の右に y を1列追加した行列を返す
func appendColumn(X mat.Matrix, y []float64) *mat.Dense {
	r, c := X.Dims()
	out := mat.NewDense(r, c+1, nil)
	out.Slice(0, r, 0, c).(*mat.Dense).Copy(X)
	out.SetCol(c, y)
	return out
}
