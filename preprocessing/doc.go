// Package preprocessing はscikit-learn互換の前処理変換器を提供します。
//
// 数値列用の SimpleImputer と StandardScaler は model.Transformer を実装し、
// pipeline.Pipeline のステップとして組み合わせられます。
// 文字列の列を扱う CategoricalImputer と OneHotEncoder はレコード([][]string)を受け取ります。
//
// 学習済みの変換器はgobで保存できます。インターフェース越しに保存される型は
// init で登録済みです。
package preprocessing

import "encoding/gob"

func init() {
	gob.Register(&SimpleImputer{})
	gob.Register(&StandardScaler{})
}
