package preprocessing

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/carprep/core/model"
	"github.com/YuminosukeSato/carprep/pkg/errors"
)

// HandleUnknown は学習時に見ていないカテゴリの扱い
type HandleUnknown string

const (
	// HandleUnknownError は未知のカテゴリでエラーを返す
	HandleUnknownError HandleUnknown = "error"
	// HandleUnknownIgnore は未知のカテゴリを全てゼロのベクトルにする
	HandleUnknownIgnore HandleUnknown = "ignore"
)

// OneHotEncoder はscikit-learn互換のone-hotエンコーダ
//
// 各列のカテゴリは学習データに現れた値を辞書順に並べたもの。
// 出力は列ごとのインジケータを入力列の順に連結した行列になる。
type OneHotEncoder struct {
	State *model.StateManager

	HandleUnknown HandleUnknown

	// Categories は各列の学習済みカテゴリ（辞書順）
	Categories [][]string

	// FeatureNamesIn は入力列名。設定されていれば警告と出力列名に使われる。
	FeatureNamesIn []string
}

// NewOneHotEncoder は新しいOneHotEncoderを作成する
//
// 使用例:
//
//	enc := preprocessing.NewOneHotEncoder(preprocessing.HandleUnknownIgnore)
//	X, err := enc.FitTransform([][]string{{"gas", "std"}, {"diesel", "turbo"}})
func NewOneHotEncoder(handleUnknown HandleUnknown) *OneHotEncoder {
	return &OneHotEncoder{
		State:         model.NewStateManager(),
		HandleUnknown: handleUnknown,
	}
}

// Validate はパラメータを検証する
func (e *OneHotEncoder) Validate() error {
	switch e.HandleUnknown {
	case HandleUnknownError, HandleUnknownIgnore:
		return nil
	default:
		return errors.NewValidationError("handle_unknown", "must be 'error' or 'ignore'", e.HandleUnknown)
	}
}

// Fit は各列のカテゴリを学習する。X は行ごとのレコード。
func (e *OneHotEncoder) Fit(X [][]string) error {
	if err := e.Validate(); err != nil {
		return err
	}
	r, c, err := recordDims("OneHotEncoder.Fit", X)
	if err != nil {
		return err
	}

	e.Categories = make([][]string, c)
	for j := 0; j < c; j++ {
		seen := make(map[string]struct{})
		for i := 0; i < r; i++ {
			seen[X[i][j]] = struct{}{}
		}
		cats := make([]string, 0, len(seen))
		for v := range seen {
			cats = append(cats, v)
		}
		sort.Strings(cats)
		e.Categories[j] = cats
	}

	e.state().SetDimensions(c, r)
	e.state().SetFitted()
	return nil
}

// Transform はレコードをone-hot行列に変換する
func (e *OneHotEncoder) Transform(X [][]string) (mat.Matrix, error) {
	if err := e.state().RequireFitted("OneHotEncoder", "Transform"); err != nil {
		return nil, err
	}
	if len(X) == 0 {
		return nil, errors.NewModelError("OneHotEncoder.Transform", "empty data", errors.ErrEmptyData)
	}
	r, c, err := recordDims("OneHotEncoder.Transform", X)
	if err != nil {
		return nil, err
	}
	if err := e.state().RequireFeatures("OneHotEncoder.Transform", c); err != nil {
		return nil, err
	}

	index := e.buildIndex()
	offsets := make([]int, c)
	width := 0
	for j, cats := range e.Categories {
		offsets[j] = width
		width += len(cats)
	}

	result := mat.NewDense(r, width, nil)
	unknown := make([]map[string]struct{}, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			k, ok := index[j][X[i][j]]
			if !ok {
				if e.HandleUnknown == HandleUnknownError {
					return nil, errors.NewValueError("OneHotEncoder.Transform",
						fmt.Sprintf("found unknown category %q in column '%s' during transform", X[i][j], e.columnName(j)))
				}
				if unknown[j] == nil {
					unknown[j] = make(map[string]struct{})
				}
				unknown[j][X[i][j]] = struct{}{}
				continue
			}
			result.Set(i, offsets[j]+k, 1)
		}
	}

	e.warnUnknown(unknown)
	return result, nil
}

// FitTransform は学習と変換を同時に実行する
func (e *OneHotEncoder) FitTransform(X [][]string) (mat.Matrix, error) {
	if err := e.Fit(X); err != nil {
		return nil, err
	}
	return e.Transform(X)
}

// NOutputs は出力列数（カテゴリ数の合計）を返す
func (e *OneHotEncoder) NOutputs() int {
	n := 0
	for _, cats := range e.Categories {
		n += len(cats)
	}
	return n
}

// FeatureNamesOut は "列名_カテゴリ" 形式の出力列名を返す。
// input が nil の場合は FeatureNamesIn を使う。
func (e *OneHotEncoder) FeatureNamesOut(input []string) []string {
	if input == nil {
		input = e.FeatureNamesIn
	}
	names := make([]string, 0, e.NOutputs())
	for j, cats := range e.Categories {
		prefix := fmt.Sprintf("x%d", j)
		if j < len(input) {
			prefix = input[j]
		}
		for _, cat := range cats {
			names = append(names, prefix+"_"+cat)
		}
	}
	return names
}

// GetParams はパラメータを取得する
func (e *OneHotEncoder) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"handle_unknown": string(e.HandleUnknown),
	}
}

// buildIndex は Categories の逆引きを作る。学習済みの状態は変更しないので
// 復元済みのエンコーダを複数のgoroutineから読み取り専用で使える。
func (e *OneHotEncoder) buildIndex() []map[string]int {
	index := make([]map[string]int, len(e.Categories))
	for j, cats := range e.Categories {
		index[j] = make(map[string]int, len(cats))
		for k, cat := range cats {
			index[j][cat] = k
		}
	}
	return index
}

func (e *OneHotEncoder) columnName(j int) string {
	if j < len(e.FeatureNamesIn) {
		return e.FeatureNamesIn[j]
	}
	return fmt.Sprintf("x%d", j)
}

func (e *OneHotEncoder) warnUnknown(unknown []map[string]struct{}) {
	for j, set := range unknown {
		if len(set) == 0 {
			continue
		}
		cats := make([]string, 0, len(set))
		for v := range set {
			cats = append(cats, v)
		}
		sort.Strings(cats)
		errors.Warn(errors.NewUnknownCategoryWarning(e.columnName(j), cats))
	}
}

func (e *OneHotEncoder) state() *model.StateManager {
	if e.State == nil {
		e.State = model.NewStateManager()
	}
	return e.State
}
