package compose

import (
	"io"
	"math"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/carprep/dataset"
	"github.com/YuminosukeSato/carprep/pipeline"
	"github.com/YuminosukeSato/carprep/pkg/errors"
	"github.com/YuminosukeSato/carprep/pkg/log"
	"github.com/YuminosukeSato/carprep/preprocessing"
)

func init() {
	log.SetProvider(log.NewZerologProviderWithWriter(io.Discard, log.LevelError, false))
	errors.SetWarningHandler(func(w error) {})
}

const trainCSV = `horsepower,fueltype,company,price
100,gas,toyota,10
,diesel,mazda,20
300,gas,,30
200,gas,toyota,40
`

const testCSV = `horsepower,fueltype,company,price
150,gas,subaru,50
,diesel,mazda,60
`

func frame(t *testing.T, csv string) dataframe.DataFrame {
	t.Helper()
	df, err := dataset.Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	return df
}

func newTransformer(t *testing.T) *ColumnTransformer {
	t.Helper()
	num := NewNumericBranch("num_pipeline", []string{"horsepower"}, pipeline.New(
		pipeline.Step{Name: "imputer", Transformer: preprocessing.NewSimpleImputer(preprocessing.StrategyMedian)},
		pipeline.Step{Name: "scaler", Transformer: preprocessing.NewStandardScaler(false, true)},
	))
	cat := NewCategoricalBranch("cat_pipeline", []string{"fueltype", "company"},
		preprocessing.NewCategoricalImputer(preprocessing.StrategyMostFrequent),
		preprocessing.NewOneHotEncoder(preprocessing.HandleUnknownIgnore),
		nil,
	)
	ct, err := NewColumnTransformer(num, cat)
	if err != nil {
		t.Fatalf("NewColumnTransformer() error = %v", err)
	}
	return ct
}

func TestColumnTransformer_FitTransform(t *testing.T) {
	ct := newTransformer(t)
	X, err := ct.FitTransform(frame(t, trainCSV))
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	// 1 数値列 + fueltype{diesel,gas} + company{mazda,toyota}
	r, c := X.Dims()
	if r != 4 || c != 5 {
		t.Fatalf("dims = %dx%d, want 4x5", r, c)
	}

	wantNames := []string{"horsepower", "fueltype_diesel", "fueltype_gas", "company_mazda", "company_toyota"}
	if got := ct.FeatureNames(); !reflect.DeepEqual(got, wantNames) {
		t.Errorf("FeatureNames() = %v, want %v", got, wantNames)
	}

	// 補完: horsepowerの中央値200, companyの最頻値toyota
	// {100,200,300,200}: 母標準偏差 sqrt(5000)
	scale := math.Sqrt(5000)
	if math.Abs(X.At(1, 0)-200/scale) > 1e-12 {
		t.Errorf("imputed horsepower = %v, want %v", X.At(1, 0), 200/scale)
	}
	if X.At(2, 4) != 1 {
		t.Errorf("missing company should be imputed with toyota: %v", mat.Formatted(X))
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.IsNaN(X.At(i, j)) {
				t.Fatalf("NaN at (%d,%d)", i, j)
			}
		}
	}
}

func TestColumnTransformer_TransformUnknownCategory(t *testing.T) {
	ct := newTransformer(t)
	if _, err := ct.FitTransform(frame(t, trainCSV)); err != nil {
		t.Fatal(err)
	}

	X, err := ct.Transform(frame(t, testCSV))
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	// subaru は学習時に無いので company のブロックは全てゼロ
	if X.At(0, 3) != 0 || X.At(0, 4) != 0 {
		t.Errorf("unknown company should encode to zeros: %v", mat.Formatted(X))
	}
	// テストデータの欠損は学習時の中央値で埋める
	scale := math.Sqrt(5000)
	if math.Abs(X.At(1, 0)-200/scale) > 1e-12 {
		t.Errorf("test gap filled with %v, want train median", X.At(1, 0))
	}
}

func TestColumnTransformer_MissingColumn(t *testing.T) {
	ct := newTransformer(t)
	df := frame(t, "horsepower,fueltype\n100,gas\n")

	_, err := ct.FitTransform(df)
	var colErr *errors.ColumnError
	if !errors.As(err, &colErr) {
		t.Fatalf("expected ColumnError, got %v", err)
	}
	if !reflect.DeepEqual(colErr.Columns, []string{"company"}) {
		t.Errorf("Columns = %v", colErr.Columns)
	}
}

func TestColumnTransformer_UnparsableNumber(t *testing.T) {
	ct := newTransformer(t)
	df := frame(t, "horsepower,fueltype,company\nfast,gas,audi\n")

	_, err := ct.FitTransform(df)
	var ve *errors.ValueError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValueError, got %v", err)
	}
}

func TestColumnTransformer_NotFitted(t *testing.T) {
	ct := newTransformer(t)
	_, err := ct.Transform(frame(t, testCSV))
	var nf *errors.NotFittedError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFittedError, got %v", err)
	}
}

func TestNewColumnTransformer_Validation(t *testing.T) {
	steps := func() *pipeline.Pipeline {
		return pipeline.Make(preprocessing.NewStandardScaler(false, true))
	}
	tests := []struct {
		name     string
		branches []Branch
	}{
		{"no branches", nil},
		{"empty columns", []Branch{NewNumericBranch("num", nil, steps())}},
		{"duplicate name", []Branch{
			NewNumericBranch("num", []string{"a"}, steps()),
			NewNumericBranch("num", []string{"b"}, steps()),
		}},
		{"overlapping columns", []Branch{
			NewNumericBranch("num", []string{"a", "b"}, steps()),
			NewNumericBranch("num2", []string{"b"}, steps()),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewColumnTransformer(tt.branches...)
			var ve *errors.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestColumnTransformer_SaveLoad(t *testing.T) {
	ct := newTransformer(t)
	if _, err := ct.FitTransform(frame(t, trainCSV)); err != nil {
		t.Fatal(err)
	}
	want, err := ct.Transform(frame(t, testCSV))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "artifacts", "preprocessor.gob")
	if err := ct.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got, err := loaded.Transform(frame(t, testCSV))
	if err != nil {
		t.Fatalf("loaded Transform() error = %v", err)
	}
	if !mat.EqualApprox(got, want, 1e-12) {
		t.Errorf("loaded output differs:\n%v\nwant\n%v", mat.Formatted(got), mat.Formatted(want))
	}
	if !reflect.DeepEqual(loaded.FeatureNames(), ct.FeatureNames()) {
		t.Errorf("FeatureNames differ after load: %v", loaded.FeatureNames())
	}
	if loaded.NOutputs() != 5 {
		t.Errorf("NOutputs() = %d, want 5", loaded.NOutputs())
	}

	if err := newTransformer(t).Save(path); err == nil {
		t.Error("saving an unfitted transformer should fail")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "none.gob")); err == nil {
		t.Error("expected error for a missing artifact")
	}
}
