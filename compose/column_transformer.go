// Package compose implements a scikit-learn compatible ColumnTransformer that
// applies a different branch to each named subset of the columns of a table.
package compose

import (
	"encoding/gob"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/carprep/core/model"
	"github.com/YuminosukeSato/carprep/dataset"
	"github.com/YuminosukeSato/carprep/pkg/errors"
	"github.com/YuminosukeSato/carprep/pkg/log"
)

func init() {
	gob.Register(&NumericBranch{})
	gob.Register(&CategoricalBranch{})
}

// ColumnTransformer routes each named column to exactly one branch and
// concatenates the branch outputs in declaration order. Columns of the
// table that no branch names are dropped.
//
// Exported fields are the persisted state; the logger is recreated after loading.
type ColumnTransformer struct {
	State    *model.StateManager
	Branches []Branch

	logger log.Logger
}

// NewColumnTransformer validates the branches and creates a ColumnTransformer.
// Every branch needs a unique name and at least one column, and a column may
// not appear in more than one branch.
func NewColumnTransformer(branches ...Branch) (*ColumnTransformer, error) {
	ct := &ColumnTransformer{
		State:    model.NewStateManager(),
		Branches: branches,
		logger:   log.GetLoggerWithName("ColumnTransformer"),
	}
	if err := ct.Validate(); err != nil {
		return nil, err
	}
	return ct, nil
}

// Validate checks the branch layout.
func (ct *ColumnTransformer) Validate() error {
	if len(ct.Branches) == 0 {
		return errors.NewValidationError("transformers", "at least one branch is required", 0)
	}

	names := make(map[string]struct{}, len(ct.Branches))
	owner := make(map[string]string)
	for _, b := range ct.Branches {
		if b == nil {
			return errors.NewValidationError("transformers", "branch must not be nil", nil)
		}
		if _, dup := names[b.BranchName()]; dup || b.BranchName() == "" {
			return errors.NewValidationError("transformers", "branch names must be unique and non-empty", b.BranchName())
		}
		names[b.BranchName()] = struct{}{}

		if len(b.InputColumns()) == 0 {
			return errors.NewValidationError(b.BranchName(), "branch must select at least one column", b.InputColumns())
		}
		for _, col := range b.InputColumns() {
			if prev, ok := owner[col]; ok {
				return errors.NewValidationError(b.BranchName(),
					fmt.Sprintf("column '%s' is already routed to '%s'", col, prev), col)
			}
			owner[col] = b.BranchName()
		}
	}
	return nil
}

// Fit learns every branch from df.
func (ct *ColumnTransformer) Fit(df dataframe.DataFrame) error {
	_, err := ct.FitTransform(df)
	return err
}

// FitTransform learns every branch from df and returns the concatenated output.
func (ct *ColumnTransformer) FitTransform(df dataframe.DataFrame) (out *mat.Dense, err error) {
	defer errors.Recover(&err, "ColumnTransformer.FitTransform")

	if err := ct.Validate(); err != nil {
		return nil, err
	}
	if err := ct.requireColumns("ColumnTransformer.FitTransform", df); err != nil {
		return nil, err
	}

	blocks := make([]mat.Matrix, len(ct.Branches))
	for i, b := range ct.Branches {
		block, err := b.FitTransform(df)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to fit branch '%s'", b.BranchName())
		}
		blocks[i] = block
		_, c := block.Dims()
		ct.log().Debug("branch fitted",
			log.BranchKey, b.BranchName(),
			log.ColumnsKey, len(b.InputColumns()),
			log.FeaturesKey, c,
		)
	}

	out = hstack(df.Nrow(), blocks)
	_, c := out.Dims()
	ct.state().SetDimensions(c, df.Nrow())
	ct.state().SetFitted()
	return out, nil
}

// Transform applies the fitted branches to df without refitting.
func (ct *ColumnTransformer) Transform(df dataframe.DataFrame) (out *mat.Dense, err error) {
	defer errors.Recover(&err, "ColumnTransformer.Transform")

	if err := ct.state().RequireFitted("ColumnTransformer", "Transform"); err != nil {
		return nil, err
	}
	if err := ct.requireColumns("ColumnTransformer.Transform", df); err != nil {
		return nil, err
	}

	blocks := make([]mat.Matrix, len(ct.Branches))
	for i, b := range ct.Branches {
		block, err := b.Transform(df)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to transform branch '%s'", b.BranchName())
		}
		blocks[i] = block
	}

	out = hstack(df.Nrow(), blocks)
	if err := ct.state().RequireFeatures("ColumnTransformer.Transform", outputWidth(out)); err != nil {
		return nil, err
	}
	return out, nil
}

// FeatureNames returns the output column names in output order.
func (ct *ColumnTransformer) FeatureNames() []string {
	var names []string
	for _, b := range ct.Branches {
		names = append(names, b.FeatureNamesOut()...)
	}
	return names
}

// NOutputs returns the fitted output width.
func (ct *ColumnTransformer) NOutputs() int {
	n, _ := ct.state().GetDimensions()
	return n
}

// Branch returns the branch with the given name.
func (ct *ColumnTransformer) Branch(name string) (Branch, bool) {
	for _, b := range ct.Branches {
		if b.BranchName() == name {
			return b, true
		}
	}
	return nil, false
}

// Save persists the fitted transformer as gob.
func (ct *ColumnTransformer) Save(path string) error {
	if err := ct.state().RequireFitted("ColumnTransformer", "Save"); err != nil {
		return err
	}
	return model.SaveModel(ct, path)
}

// Load replaces ct with the transformer stored at path.
func (ct *ColumnTransformer) Load(path string) error {
	var loaded ColumnTransformer
	if err := model.LoadModel(&loaded, path); err != nil {
		return err
	}
	if err := loaded.state().RequireFitted("ColumnTransformer", "Load"); err != nil {
		return err
	}
	*ct = loaded
	return nil
}

// Load reads a fitted ColumnTransformer written by Save.
//
//	ct, err := compose.Load("artifacts/preprocessor.gob")
//	X, err := ct.Transform(df)
func Load(path string) (*ColumnTransformer, error) {
	ct := &ColumnTransformer{}
	if err := ct.Load(path); err != nil {
		return nil, err
	}
	return ct, nil
}

func (ct *ColumnTransformer) requireColumns(op string, df dataframe.DataFrame) error {
	var missing []string
	for _, b := range ct.Branches {
		missing = append(missing, dataset.MissingColumns(df, b.InputColumns()...)...)
	}
	if len(missing) > 0 {
		return errors.NewColumnError(op, missing...)
	}
	return nil
}

func (ct *ColumnTransformer) state() *model.StateManager {
	if ct.State == nil {
		ct.State = model.NewStateManager()
	}
	return ct.State
}

func (ct *ColumnTransformer) log() log.Logger {
	if ct.logger == nil {
		ct.logger = log.GetLoggerWithName("ColumnTransformer")
	}
	return ct.logger
}

// hstack concatenates blocks with the same row count left to right.
func hstack(rows int, blocks []mat.Matrix) *mat.Dense {
	width := 0
	for _, b := range blocks {
		_, c := b.Dims()
		width += c
	}

	out := mat.NewDense(rows, width, nil)
	offset := 0
	for _, b := range blocks {
		_, c := b.Dims()
		if c == 0 {
			continue
		}
		out.Slice(0, rows, offset, offset+c).(*mat.Dense).Copy(b)
		offset += c
	}
	return out
}

func outputWidth(m mat.Matrix) int {
	_, c := m.Dims()
	return c
}
