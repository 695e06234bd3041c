package preprocessing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/carprep/core/model"
	"github.com/YuminosukeSato/carprep/pkg/errors"
)

// Strategy は欠損値を埋める統計量の種類
type Strategy string

const (
	StrategyMean         Strategy = "mean"
	StrategyMedian       Strategy = "median"
	StrategyMostFrequent Strategy = "most_frequent"
	StrategyConstant     Strategy = "constant"
)

// MissingCategory はカテゴリ列の欠損値を表す
const MissingCategory = ""

// SimpleImputer は数値列の欠損値(NaN)を列ごとの統計量で埋める
//
// 統計量は Fit に渡されたデータからのみ計算され、Transform では再計算しない。
type SimpleImputer struct {
	State *model.StateManager

	Strategy  Strategy
	FillValue float64

	// Statistics は各列の補完値
	Statistics []float64
}

// NewSimpleImputer は新しいSimpleImputerを作成する
//
// 使用例:
//
//	imputer := preprocessing.NewSimpleImputer(preprocessing.StrategyMedian)
//	XFilled, err := imputer.FitTransform(X)
func NewSimpleImputer(strategy Strategy) *SimpleImputer {
	return &SimpleImputer{
		State:    model.NewStateManager(),
		Strategy: strategy,
	}
}

// Validate はパラメータを検証する
func (im *SimpleImputer) Validate() error {
	switch im.Strategy {
	case StrategyMean, StrategyMedian, StrategyMostFrequent, StrategyConstant:
		return nil
	default:
		return errors.NewValidationError("strategy", "must be one of mean, median, most_frequent, constant", im.Strategy)
	}
}

// Fit は各列の補完値を計算する
func (im *SimpleImputer) Fit(X mat.Matrix) error {
	if err := im.Validate(); err != nil {
		return err
	}

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("SimpleImputer.Fit", "empty data", errors.ErrEmptyData)
	}

	im.Statistics = make([]float64, c)
	col := make([]float64, 0, r)
	for j := 0; j < c; j++ {
		if im.Strategy == StrategyConstant {
			im.Statistics[j] = im.FillValue
			continue
		}

		col = col[:0]
		for i := 0; i < r; i++ {
			if v := X.At(i, j); !math.IsNaN(v) {
				col = append(col, v)
			}
		}
		if len(col) == 0 {
			return errors.NewModelError("SimpleImputer.Fit",
				fmt.Sprintf("column %d", j), errors.ErrNoObservedValues)
		}

		switch im.Strategy {
		case StrategyMean:
			im.Statistics[j] = floats.Sum(col) / float64(len(col))
		case StrategyMedian:
			im.Statistics[j] = median(col)
		case StrategyMostFrequent:
			im.Statistics[j] = mostFrequentFloat(col)
		}
	}

	im.state().SetDimensions(c, r)
	im.state().SetFitted()
	return nil
}

// Transform はNaNを学習済みの補完値で置き換える
func (im *SimpleImputer) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := im.state().RequireFitted("SimpleImputer", "Transform"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if err := im.state().RequireFeatures("SimpleImputer.Transform", c); err != nil {
		return nil, err
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				v = im.Statistics[j]
			}
			result.Set(i, j, v)
		}
	}
	return result, nil
}

// FitTransform は学習と補完を同時に実行する
func (im *SimpleImputer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := im.Fit(X); err != nil {
		return nil, err
	}
	return im.Transform(X)
}

// FeatureNamesOut は列名を変更しない
func (im *SimpleImputer) FeatureNamesOut(input []string) []string {
	return append([]string(nil), input...)
}

// GetParams はパラメータを取得する
func (im *SimpleImputer) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"strategy":   string(im.Strategy),
		"fill_value": im.FillValue,
	}
}

func (im *SimpleImputer) state() *model.StateManager {
	if im.State == nil {
		im.State = model.NewStateManager()
	}
	return im.State
}

// CategoricalImputer は文字列の列の欠損値(MissingCategory)を埋める
//
// most_frequent では最頻値を使い、同数の場合は辞書順で最小の値を選ぶ。
type CategoricalImputer struct {
	State *model.StateManager

	Strategy  Strategy
	FillValue string

	Statistics []string
}

// NewCategoricalImputer は新しいCategoricalImputerを作成する
func NewCategoricalImputer(strategy Strategy) *CategoricalImputer {
	return &CategoricalImputer{
		State:    model.NewStateManager(),
		Strategy: strategy,
	}
}

// Validate はパラメータを検証する
func (ci *CategoricalImputer) Validate() error {
	switch ci.Strategy {
	case StrategyMostFrequent:
		return nil
	case StrategyConstant:
		if ci.FillValue == MissingCategory {
			return errors.NewValidationError("fill_value", "must not be empty for constant strategy", ci.FillValue)
		}
		return nil
	default:
		return errors.NewValidationError("strategy", "must be most_frequent or constant for categorical data", ci.Strategy)
	}
}

// Fit は各列の補完値を計算する。X は行ごとのレコード。
func (ci *CategoricalImputer) Fit(X [][]string) error {
	if err := ci.Validate(); err != nil {
		return err
	}
	r, c, err := recordDims("CategoricalImputer.Fit", X)
	if err != nil {
		return err
	}

	ci.Statistics = make([]string, c)
	for j := 0; j < c; j++ {
		if ci.Strategy == StrategyConstant {
			ci.Statistics[j] = ci.FillValue
			continue
		}

		counts := make(map[string]int)
		for i := 0; i < r; i++ {
			if v := X[i][j]; v != MissingCategory {
				counts[v]++
			}
		}
		if len(counts) == 0 {
			return errors.NewModelError("CategoricalImputer.Fit",
				fmt.Sprintf("column %d", j), errors.ErrNoObservedValues)
		}
		ci.Statistics[j] = mostFrequentString(counts)
	}

	ci.state().SetDimensions(c, r)
	ci.state().SetFitted()
	return nil
}

// Transform は欠損値を補完した新しいレコードを返す
func (ci *CategoricalImputer) Transform(X [][]string) ([][]string, error) {
	if err := ci.state().RequireFitted("CategoricalImputer", "Transform"); err != nil {
		return nil, err
	}
	if len(X) == 0 {
		return [][]string{}, nil
	}
	_, c, err := recordDims("CategoricalImputer.Transform", X)
	if err != nil {
		return nil, err
	}
	if err := ci.state().RequireFeatures("CategoricalImputer.Transform", c); err != nil {
		return nil, err
	}

	out := make([][]string, len(X))
	for i, row := range X {
		filled := make([]string, c)
		for j, v := range row {
			if v == MissingCategory {
				v = ci.Statistics[j]
			}
			filled[j] = v
		}
		out[i] = filled
	}
	return out, nil
}

// FitTransform は学習と補完を同時に実行する
func (ci *CategoricalImputer) FitTransform(X [][]string) ([][]string, error) {
	if err := ci.Fit(X); err != nil {
		return nil, err
	}
	return ci.Transform(X)
}

// GetParams はパラメータを取得する
func (ci *CategoricalImputer) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"strategy":   string(ci.Strategy),
		"fill_value": ci.FillValue,
	}
}

func (ci *CategoricalImputer) state() *model.StateManager {
	if ci.State == nil {
		ci.State = model.NewStateManager()
	}
	return ci.State
}

// median は中央値を返す。要素数が偶数の場合は中央2値の平均。
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func mostFrequentFloat(values []float64) float64 {
	counts := make(map[float64]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best, bestCount := 0.0, 0
	for v, n := range counts {
		if n > bestCount || (n == bestCount && v < best) {
			best, bestCount = v, n
		}
	}
	return best
}

func mostFrequentString(counts map[string]int) string {
	best, bestCount := "", 0
	for v, n := range counts {
		if n > bestCount || (n == bestCount && v < best) {
			best, bestCount = v, n
		}
	}
	return best
}

// recordDims は行ごとのレコードが矩形であることを確認して次元を返す
func recordDims(op string, X [][]string) (rows, cols int, err error) {
	if len(X) == 0 || len(X[0]) == 0 {
		return 0, 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	cols = len(X[0])
	for _, row := range X {
		if len(row) != cols {
			return 0, 0, errors.NewDimensionError(op, cols, len(row), 1)
		}
	}
	return len(X), cols, nil
}
