package dataset

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestWriteMatrix(t *testing.T) {
	X := mat.NewDense(2, 3, []float64{
		0.1, 2, 13495,
		1.0 / 3, 0, math.NaN(),
	})

	var buf bytes.Buffer
	if err := WriteMatrix(&buf, X, []string{"wheelbase", "company_toyota", "price"}); err != nil {
		t.Fatalf("WriteMatrix() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	if lines[0] != "wheelbase,company_toyota,price" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "0.1,2,13495" {
		t.Errorf("row 1 = %q", lines[1])
	}
	if lines[2] != "0.3333333333333333,0,NaN" {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestSaveMatrix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "train_arr.csv")
	X := mat.NewDense(1, 2, []float64{1.5, 2})

	if err := SaveMatrix(path, X, []string{"a", "b"}); err != nil {
		t.Fatalf("SaveMatrix() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a,b\n1.5,2\n" {
		t.Errorf("content = %q", data)
	}

	if err := SaveMatrix(path, X, []string{"a"}); err == nil {
		t.Error("expected DimensionError for mismatched names")
	}
}
