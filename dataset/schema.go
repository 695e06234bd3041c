// Package dataset は自動車価格データセットの読み込みと列の前処理を提供します。
//
// テーブルは github.com/go-gota/gota の DataFrame として扱い、全ての列を文字列として
// 読み込みます。数値への変換は compose パッケージの数値ブランチで行います。
package dataset

// 列名
const (
	IDColumn           = "car_ID"
	SymbolingColumn    = "symboling"
	NameColumn         = "CarName"
	ManufacturerColumn = "company"
	TargetColumn       = "price"
)

// NumericalColumns は中央値補完と標準化を行う数値列
var NumericalColumns = []string{
	"wheelbase",
	"carlength",
	"carwidth",
	"carheight",
	"curbweight",
	"enginesize",
	"boreratio",
	"stroke",
	"compressionratio",
	"horsepower",
	"peakrpm",
	"citympg",
	"highwaympg",
}

// CategoricalColumns は最頻値補完とone-hotエンコードを行うカテゴリ列
var CategoricalColumns = []string{
	"fueltype",
	"aspiration",
	"doornumber",
	"carbody",
	"drivewheel",
	"enginelocation",
	"enginetype",
	"cylindernumber",
	"fuelsystem",
	ManufacturerColumn,
}

// ExcludedColumns は特徴量に使わず削除する列
var ExcludedColumns = []string{IDColumn, NameColumn, SymbolingColumn}

// MissingValues は欠損値として扱うCSVのトークン
var MissingValues = []string{"", "NA", "NaN", "<nil>", "?"}
