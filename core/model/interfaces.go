// Package model provides the shared interfaces, fitted-state tracking and
// persistence helpers used by every transformer in carprep.
package model

// ParameterGetter is the interface for transformers that expose their hyperparameters.
type ParameterGetter interface {
	// GetParams returns the hyperparameters, keyed by scikit-learn style names.
	GetParams() map[string]interface{}
}

// Persistable is the interface for fitted objects that can be saved and loaded.
type Persistable interface {
	Save(path string) error
	Load(path string) error
}
