// Package log defines standard attribute keys for preprocessing operations.
//
// Keys follow a hierarchical naming convention (e.g. "ml.operation",
// "data.samples") so that log lines can be filtered by category.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the transformer type.
	// Examples: "ColumnTransformer", "OneHotEncoder", "StandardScaler"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "transform", "fit_transform"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component is logging.
	// Examples: "transformation", "compose", "dataset"
	ComponentKey = "ml.component"

	// PhaseKey indicates the data split being processed.
	// Examples: "training", "testing", "inference"
	PhaseKey = "ml.phase"

	// StageKey names the step of the preparation flow.
	StageKey = "pipeline.stage"

	// BranchKey names a column transformer branch.
	BranchKey = "pipeline.branch"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of rows.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of output feature columns.
	FeaturesKey = "data.features"

	// ColumnsKey lists input column names.
	ColumnsKey = "data.columns"

	// PathKey is a file system location read or written.
	PathKey = "io.path"
)

// Performance
const (
	// DurationMsKey is the elapsed wall time in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Standard attribute values.
const (
	OperationFit          = "fit"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"

	PhaseTraining  = "training"
	PhaseTesting   = "testing"
	PhaseInference = "inference"
)
