// Package report はデータ変換結果の分布を確認するためのヒストグラムを出力します。
package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/YuminosukeSato/carprep/core/parallel"
	"github.com/YuminosukeSato/carprep/pkg/errors"
)

const (
	plotWidth  = 4 * vg.Inch
	plotHeight = 3 * vg.Inch

	// parallelThreshold 以下の列数では逐次に描画する
	parallelThreshold = 8
)

// WriteHistograms は X の各列のヒストグラムをPNGとして dir に書き出し、作成したファイルのパスを返す。
//
// names は列名で、ファイル名とタイトルに使われる。NaN/Infは除外され、
// 有限値が無い列と値が一定の列は出力しない。
func WriteHistograms(dir string, X mat.Matrix, names []string, bins int) ([]string, error) {
	r, c := X.Dims()
	if len(names) < c {
		return nil, errors.NewDimensionError("WriteHistograms", c, len(names), 1)
	}
	if bins <= 0 {
		return nil, errors.NewValidationError("bins", "must be positive", bins)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create directory %s", dir)
	}

	paths := make([]string, c)
	err := parallel.ForEach(c, parallelThreshold, func(j int) error {
		values := make([]float64, 0, r)
		for i := 0; i < r; i++ {
			if v := X.At(i, j); !math.IsNaN(v) && !math.IsInf(v, 0) {
				values = append(values, v)
			}
		}
		if len(values) == 0 || floats.Min(values) == floats.Max(values) {
			return nil
		}

		path := filepath.Join(dir, fmt.Sprintf("%03d_%s.png", j, fileName(names[j])))
		if err := writeHistogram(path, names[j], values, bins); err != nil {
			return err
		}
		paths[j] = path
		return nil
	})

	var written []string
	for _, path := range paths {
		if path != "" {
			written = append(written, path)
		}
	}
	return written, err
}

func writeHistogram(path, title string, values []float64, bins int) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "value"
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return errors.Wrapf(err, "failed to build histogram for %s", title)
	}
	p.Add(h)

	canvas := vgimg.New(plotWidth, plotHeight)
	p.Draw(draw.New(canvas))

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(f); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return errors.Wrap(f.Close(), "failed to close file")
}

// fileName はファイル名に使えない文字を "_" に置き換える
func fileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, name)
}
