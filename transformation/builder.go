// Package transformation は自動車価格データセットの前処理全体を組み立てます。
//
// BuildTransformer で列ごとの変換器を作り、DataTransformation.Prepare で
// 学習データへの学習・変換、テストデータへの変換、変換器の保存までを行います。
// 失敗は全て errors.TransformationError として返されます。
package transformation

import (
	"github.com/YuminosukeSato/carprep/compose"
	"github.com/YuminosukeSato/carprep/dataset"
	"github.com/YuminosukeSato/carprep/pipeline"
	"github.com/YuminosukeSato/carprep/pkg/errors"
	"github.com/YuminosukeSato/carprep/pkg/log"
	"github.com/YuminosukeSato/carprep/preprocessing"
)

// ブランチ名
const (
	NumericBranchName     = "num_pipeline"
	CategoricalBranchName = "cat_pipeline"
)

// BuildTransformer は dataset の列定義から前処理用のColumnTransformerを作る
//
//   - num_pipeline: 中央値補完 → 平均を引かない標準化
//   - cat_pipeline: 最頻値補完 → one-hot(未知カテゴリは無視) → 平均を引かない標準化
func BuildTransformer() (*compose.ColumnTransformer, error) {
	return NewTransformer(dataset.NumericalColumns, dataset.CategoricalColumns)
}

// NewTransformer は任意の列の組み合わせで BuildTransformer と同じ構成の変換器を作る。
// 列の重複や空のリストは TransformationError になる。
func NewTransformer(numerical, categorical []string) (*compose.ColumnTransformer, error) {
	logger := log.GetLoggerWithName("DataTransformation")
	logger.Info("Categorical Columns", log.ColumnsKey, categorical)
	logger.Info("Numerical Columns", log.ColumnsKey, numerical)

	num := compose.NewNumericBranch(NumericBranchName, copyColumns(numerical), pipeline.New(
		pipeline.Step{Name: "imputer", Transformer: preprocessing.NewSimpleImputer(preprocessing.StrategyMedian)},
		pipeline.Step{Name: "scaler", Transformer: preprocessing.NewStandardScaler(false, true)},
	))

	cat := compose.NewCategoricalBranch(CategoricalBranchName, copyColumns(categorical),
		preprocessing.NewCategoricalImputer(preprocessing.StrategyMostFrequent),
		preprocessing.NewOneHotEncoder(preprocessing.HandleUnknownIgnore),
		pipeline.New(
			pipeline.Step{Name: "scaler", Transformer: preprocessing.NewStandardScaler(false, true)},
		),
	)

	ct, err := compose.NewColumnTransformer(num, cat)
	if err != nil {
		return nil, errors.NewTransformationError("BuildTransformer", "build transformer", err)
	}
	return ct, nil
}

func copyColumns(cols []string) []string {
	return append([]string(nil), cols...)
}
