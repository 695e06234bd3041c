package dataset

import (
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/carprep/pkg/errors"
)

// MatrixFrame は行列を列名付きのDataFrameにする。
// 値は丸めずに最短の表現で文字列化される。
func MatrixFrame(X mat.Matrix, names []string) (dataframe.DataFrame, error) {
	r, c := X.Dims()
	if len(names) != c {
		return dataframe.DataFrame{}, errors.NewDimensionError("MatrixFrame", c, len(names), 1)
	}

	cols := make([]series.Series, c)
	for j := 0; j < c; j++ {
		values := make([]string, r)
		for i := 0; i < r; i++ {
			values[i] = strconv.FormatFloat(X.At(i, j), 'g', -1, 64)
		}
		cols[j] = series.New(values, series.String, names[j])
	}

	df := dataframe.New(cols...)
	if df.Err != nil {
		return dataframe.DataFrame{}, errors.WithStack(df.Err)
	}
	return df, nil
}

// WriteMatrix は行列をヘッダ付きCSVとして書き出す
func WriteMatrix(w io.Writer, X mat.Matrix, names []string) error {
	df, err := MatrixFrame(X, names)
	if err != nil {
		return err
	}
	if err := df.WriteCSV(w); err != nil {
		return errors.Wrap(err, "failed to write csv")
	}
	return nil
}

// SaveMatrix は行列をCSVファイルに保存する。親ディレクトリが無ければ作成する。
func SaveMatrix(path string, X mat.Matrix, names []string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "failed to close %s", path)
		}
	}()
	return WriteMatrix(f, X, names)
}
