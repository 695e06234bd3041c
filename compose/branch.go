package compose

import (
	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/carprep/dataset"
	"github.com/YuminosukeSato/carprep/pipeline"
	"github.com/YuminosukeSato/carprep/preprocessing"
)

// Branch は名前付きの列を数値行列に変換するColumnTransformerの構成要素
//
// 実装はgobで保存されるため、exportedなフィールドに学習結果を持ち、
// compose の init で登録しておく必要があります。
type Branch interface {
	// BranchName はブランチ名（"num_pipeline" など）
	BranchName() string

	// InputColumns はこのブランチが使う列
	InputColumns() []string

	FitTransform(df dataframe.DataFrame) (mat.Matrix, error)
	Transform(df dataframe.DataFrame) (mat.Matrix, error)

	// FeatureNamesOut は出力列名
	FeatureNamesOut() []string
}

// NumericBranch は列を数値に変換してからパイプラインを適用する
type NumericBranch struct {
	Name    string
	Columns []string
	Steps   *pipeline.Pipeline
}

// NewNumericBranch は新しいNumericBranchを作成する
func NewNumericBranch(name string, columns []string, steps *pipeline.Pipeline) *NumericBranch {
	return &NumericBranch{Name: name, Columns: columns, Steps: steps}
}

func (b *NumericBranch) BranchName() string     { return b.Name }
func (b *NumericBranch) InputColumns() []string { return b.Columns }

// FitTransform はパイプラインを学習して変換結果を返す
func (b *NumericBranch) FitTransform(df dataframe.DataFrame) (mat.Matrix, error) {
	X, err := b.matrix(df)
	if err != nil {
		return nil, err
	}
	return b.Steps.FitTransform(X)
}

// Transform は学習済みのパイプラインで変換する
func (b *NumericBranch) Transform(df dataframe.DataFrame) (mat.Matrix, error) {
	X, err := b.matrix(df)
	if err != nil {
		return nil, err
	}
	return b.Steps.Transform(X)
}

func (b *NumericBranch) FeatureNamesOut() []string {
	return b.Steps.FeatureNamesOut(b.Columns)
}

// matrix は対象の列を行列にする。欠損値はNaN。
func (b *NumericBranch) matrix(df dataframe.DataFrame) (*mat.Dense, error) {
	X := mat.NewDense(df.Nrow(), len(b.Columns), nil)
	for j, name := range b.Columns {
		values, err := dataset.ParseFloats(df.Col(name))
		if err != nil {
			return nil, err
		}
		X.SetCol(j, values)
	}
	return X, nil
}

// CategoricalBranch は文字列の列を補完・one-hotエンコードし、
// 得られた指示変数の行列に Scaling のパイプラインを適用する
type CategoricalBranch struct {
	Name    string
	Columns []string

	Imputer *preprocessing.CategoricalImputer
	Encoder *preprocessing.OneHotEncoder

	// Scaling はエンコード後の行列に適用するステップ。nilなら何もしない。
	Scaling *pipeline.Pipeline
}

// NewCategoricalBranch は新しいCategoricalBranchを作成する
func NewCategoricalBranch(name string, columns []string, imputer *preprocessing.CategoricalImputer,
	encoder *preprocessing.OneHotEncoder, scaling *pipeline.Pipeline) *CategoricalBranch {
	encoder.FeatureNamesIn = columns
	return &CategoricalBranch{
		Name:    name,
		Columns: columns,
		Imputer: imputer,
		Encoder: encoder,
		Scaling: scaling,
	}
}

func (b *CategoricalBranch) BranchName() string     { return b.Name }
func (b *CategoricalBranch) InputColumns() []string { return b.Columns }

// FitTransform は補完・エンコード・スケーリングを順に学習して変換結果を返す
func (b *CategoricalBranch) FitTransform(df dataframe.DataFrame) (mat.Matrix, error) {
	filled, err := b.Imputer.FitTransform(b.records(df))
	if err != nil {
		return nil, err
	}
	encoded, err := b.Encoder.FitTransform(filled)
	if err != nil {
		return nil, err
	}
	if b.Scaling == nil {
		return encoded, nil
	}
	return b.Scaling.FitTransform(encoded)
}

// Transform は学習済みの状態で変換する。未知のカテゴリは全てゼロになる。
func (b *CategoricalBranch) Transform(df dataframe.DataFrame) (mat.Matrix, error) {
	filled, err := b.Imputer.Transform(b.records(df))
	if err != nil {
		return nil, err
	}
	encoded, err := b.Encoder.Transform(filled)
	if err != nil {
		return nil, err
	}
	if b.Scaling == nil {
		return encoded, nil
	}
	return b.Scaling.Transform(encoded)
}

func (b *CategoricalBranch) FeatureNamesOut() []string {
	names := b.Encoder.FeatureNamesOut(b.Columns)
	if b.Scaling == nil {
		return names
	}
	return b.Scaling.FeatureNamesOut(names)
}

// records は対象の列を行ごとのレコードにする。欠損値は空文字列。
func (b *CategoricalBranch) records(df dataframe.DataFrame) [][]string {
	cols := make([][]string, len(b.Columns))
	for j, name := range b.Columns {
		cols[j] = dataset.Strings(df.Col(name))
	}

	rows := make([][]string, df.Nrow())
	for i := range rows {
		row := make([]string, len(cols))
		for j := range cols {
			row[j] = cols[j][i]
		}
		rows[i] = row
	}
	return rows
}
