package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Fit",
			kind:    "invalid input",
			err:     fmt.Errorf("test error"),
			wantMsg: "carprep: Fit: invalid input: test error",
		},
		{
			name:    "without original error",
			op:      "Transform",
			kind:    "not fitted",
			err:     nil,
			wantMsg: "carprep: Transform: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("StandardScaler.Transform", 13, 12, 1)

	want := "carprep: StandardScaler.Transform: dimension mismatch on axis 1 (features). Expected 13, got 12"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("OneHotEncoder", "Transform")

	want := "carprep: OneHotEncoder: this model is not fitted yet. Call Fit() before using Transform()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewColumnError(t *testing.T) {
	err := NewColumnError("ColumnTransformer.Fit", "horsepower", "company")

	want := "carprep: ColumnTransformer.Fit: columns are not in the table: [horsepower, company]"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var colErr *ColumnError
	if !As(err, &colErr) {
		t.Fatal("Error should be castable to *ColumnError")
	}
	if len(colErr.Columns) != 2 {
		t.Errorf("Expected 2 columns, got %d", len(colErr.Columns))
	}
}

func TestNewTransformationError(t *testing.T) {
	cause := NewColumnError("drop", "car_ID")
	err := NewTransformationError("DataTransformation.Prepare", "drop columns", cause)

	if !strings.Contains(err.Error(), "transformation failed at drop columns") {
		t.Errorf("unexpected message: %s", err.Error())
	}

	var trErr *TransformationError
	if !As(err, &trErr) {
		t.Fatal("Error should be castable to *TransformationError")
	}
	if trErr.Stage != "drop columns" {
		t.Errorf("Stage = %q, want %q", trErr.Stage, "drop columns")
	}

	// 原因エラーまで辿れること
	var colErr *ColumnError
	if !As(err, &colErr) {
		t.Error("cause should be reachable through TransformationError")
	}

	// 二重ラップしない
	again := NewTransformationError("DataTransformation.Prepare", "persist", err)
	if again != err {
		t.Error("an existing TransformationError should be returned unchanged")
	}
}

func TestUnknownCategoryWarning(t *testing.T) {
	w := NewUnknownCategoryWarning("company", []string{"subaru"})

	if !strings.Contains(w.Error(), "[subaru]") || !strings.Contains(w.Error(), "'company'") {
		t.Errorf("unexpected message: %s", w.Error())
	}

	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(w error) {})

	Warn(w)
	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: expected %d rows", "Fit", 10)

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}
	if !strings.Contains(wrapped.Error(), "in Fit: expected 10 rows") {
		t.Errorf("unexpected message: %s", wrapped.Error())
	}
}

func TestErrorChaining(t *testing.T) {
	err1 := fmt.Errorf("base error")
	err2 := Wrap(err1, "wrapped once")
	err3 := NewModelError("Operation", "failed", err2)

	if !strings.Contains(err3.Error(), "base error") {
		t.Error("Expected error chain to contain base error")
	}

	formatted := fmt.Sprintf("%+v", err3)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected detailed error to contain stack trace")
	}
}

func TestCheckMatrix(t *testing.T) {
	X := mat.NewDense(2, 3, []float64{
		1, 2, math.NaN(),
		math.Inf(1), 0, 3,
	})

	// 最後の列を除いても2行目のInfは検出される
	err := CheckMatrix("fit_transform", X, 2, 2)
	if err == nil {
		t.Fatal("expected an error")
	}
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("expected NumericalInstabilityError, got %T", err)
	}
	if numErr.Row != 1 || numErr.Column != 0 {
		t.Errorf("Row, Column = %d, %d, want 1, 0", numErr.Row, numErr.Column)
	}

	clean := mat.NewDense(1, 2, []float64{1, 2})
	if err := CheckMatrix("fit_transform", clean, 1, 2); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
