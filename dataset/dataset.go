package dataset

import (
	"io"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/carprep/pkg/errors"
)

// manufacturerFixes はメーカー名の表記ゆれの修正表（大文字小文字を区別する完全一致）
var manufacturerFixes = map[string]string{
	"vw":        "volkswagen",
	"maxda":     "mazda",
	"toyouta":   "toyota",
	"vokswagen": "volkswagen",
	"porcshce":  "porsche",
	"Nissan":    "nissan",
}

// Load はCSVファイルを読み込む
func Load(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	df, err := Read(f)
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(err, "failed to read %s", path)
	}
	return df, nil
}

// Read はCSVを全列文字列のDataFrameとして読み込む。
// MissingValues のトークンは欠損値(NaN)になる。
func Read(r io.Reader) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(MissingValues),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, errors.WithStack(df.Err)
	}
	if df.Nrow() == 0 {
		return dataframe.DataFrame{}, errors.WithStack(errors.ErrEmptyData)
	}
	return df, nil
}

// ManufacturerOf は車名の最初の単語を返す。空白だけの名前は空文字列になる。
func ManufacturerOf(carName string) string {
	fields := strings.Fields(carName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// NormalizeName は既知の表記ゆれを正しいメーカー名に置き換える。
// 修正表に無い値はそのまま返す。
func NormalizeName(name string) string {
	if fixed, ok := manufacturerFixes[name]; ok {
		return fixed
	}
	return name
}

// DeriveManufacturer は CarName 列から company 列を作る。
// CarName が欠損している行の company は欠損値になる。
func DeriveManufacturer(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	names, err := column(df, "DeriveManufacturer", NameColumn)
	if err != nil {
		return df, err
	}

	records := names.Records()
	missing := names.IsNaN()
	companies := make([]string, len(records))
	for i, name := range records {
		if missing[i] {
			companies[i] = "NaN"
			continue
		}
		if companies[i] = ManufacturerOf(name); companies[i] == "" {
			companies[i] = "NaN"
		}
	}

	return mutate(df, series.New(companies, series.String, ManufacturerColumn))
}

// NormalizeManufacturer は company 列に修正表を適用する。何度適用しても結果は変わらない。
func NormalizeManufacturer(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	companies, err := column(df, "NormalizeManufacturer", ManufacturerColumn)
	if err != nil {
		return df, err
	}

	records := companies.Records()
	missing := companies.IsNaN()
	for i := range records {
		if !missing[i] {
			records[i] = NormalizeName(records[i])
		}
	}

	return mutate(df, series.New(records, series.String, ManufacturerColumn))
}

// DropExcluded は ExcludedColumns を削除する。いずれかの列が無ければエラーになる。
func DropExcluded(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	return Drop(df, ExcludedColumns...)
}

// Drop は指定した列を削除する。存在しない列があればColumnErrorを返す。
func Drop(df dataframe.DataFrame, columns ...string) (dataframe.DataFrame, error) {
	if missing := MissingColumns(df, columns...); len(missing) > 0 {
		return df, errors.NewColumnError("Drop", missing...)
	}
	out := df.Drop(columns)
	if out.Err != nil {
		return df, errors.WithStack(out.Err)
	}
	return out, nil
}

// DropIfPresent は存在する列だけを削除する
func DropIfPresent(df dataframe.DataFrame, columns ...string) (dataframe.DataFrame, error) {
	present := make([]string, 0, len(columns))
	for _, name := range columns {
		if HasColumn(df, name) {
			present = append(present, name)
		}
	}
	if len(present) == 0 {
		return df, nil
	}
	return Drop(df, present...)
}

// SplitTarget は特徴量のDataFrameと目的変数の値に分ける。
// 欠損した目的変数はNaNになり、数値に変換できない値はエラーになる。
func SplitTarget(df dataframe.DataFrame, target string) (dataframe.DataFrame, []float64, error) {
	col, err := column(df, "SplitTarget", target)
	if err != nil {
		return df, nil, err
	}

	values, err := ParseFloats(col)
	if err != nil {
		return df, nil, err
	}

	features, err := Drop(df, target)
	if err != nil {
		return df, nil, err
	}
	return features, values, nil
}

// HasColumn は列が存在するかを返す
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// MissingColumns は df に存在しない列名を返す
func MissingColumns(df dataframe.DataFrame, columns ...string) []string {
	present := make(map[string]struct{}, df.Ncol())
	for _, n := range df.Names() {
		present[n] = struct{}{}
	}
	var missing []string
	for _, name := range columns {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func column(df dataframe.DataFrame, op, name string) (series.Series, error) {
	if !HasColumn(df, name) {
		return series.Series{}, errors.NewColumnError(op, name)
	}
	col := df.Col(name)
	if col.Err != nil {
		return series.Series{}, errors.WithStack(col.Err)
	}
	return col, nil
}

func mutate(df dataframe.DataFrame, s series.Series) (dataframe.DataFrame, error) {
	out := df.Mutate(s)
	if out.Err != nil {
		return df, errors.WithStack(out.Err)
	}
	return out, nil
}
