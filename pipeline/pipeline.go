// Package pipeline implements a scikit-learn compatible Pipeline for chaining transformers.
// This provides the transformer subset of sklearn.pipeline.Pipeline.
package pipeline

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/carprep/core/model"
	"github.com/YuminosukeSato/carprep/pkg/errors"
	"github.com/YuminosukeSato/carprep/pkg/log"
)

// Step represents a single step in the pipeline.
// Each step is a tuple of (name, transformer).
type Step struct {
	Name        string            // Name of this step (for identification)
	Transformer model.Transformer // Concrete types must be registered with gob to be persisted
}

// Pipeline chains multiple transformers. The output of each step is the
// input of the next one.
//
// Exported fields are the persisted state; the logger is recreated after loading.
type Pipeline struct {
	State *model.StateManager
	Steps []Step

	logger log.Logger
}

// New creates a new Pipeline with the given steps.
// This is equivalent to sklearn.pipeline.Pipeline(steps)
func New(steps ...Step) *Pipeline {
	return &Pipeline{
		State:  model.NewStateManager(),
		Steps:  steps,
		logger: log.GetLoggerWithName("Pipeline"),
	}
}

// Make is a convenience function similar to sklearn.pipeline.make_pipeline.
// Step names are generated from their position.
func Make(transformers ...model.Transformer) *Pipeline {
	steps := make([]Step, len(transformers))
	for i, t := range transformers {
		steps[i] = Step{Name: fmt.Sprintf("step%d", i+1), Transformer: t}
	}
	return New(steps...)
}

// Validate checks step names and transformers.
func (p *Pipeline) Validate() error {
	if len(p.Steps) == 0 {
		return errors.NewValidationError("steps", "pipeline must have at least one step", 0)
	}
	seen := make(map[string]struct{}, len(p.Steps))
	for _, step := range p.Steps {
		if step.Name == "" {
			return errors.NewValidationError("pipeline step", "step name must not be empty", step.Name)
		}
		if _, dup := seen[step.Name]; dup {
			return errors.NewValidationError("pipeline step", "step names must be unique", step.Name)
		}
		seen[step.Name] = struct{}{}
		if step.Transformer == nil {
			return errors.NewValidationError("pipeline step", "step must have a transformer", step.Name)
		}
	}
	return nil
}

// Fit fits all the transformers one after the other, feeding the transformed
// output of each step into the next.
func (p *Pipeline) Fit(X mat.Matrix) error {
	_, err := p.FitTransform(X)
	return err
}

// FitTransform fits the pipeline and returns the output of the last step.
func (p *Pipeline) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	Xt := X
	var err error
	for _, step := range p.Steps {
		Xt, err = step.Transformer.FitTransform(Xt)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to fit step '%s'", step.Name))
		}
		p.log().Debug("pipeline step fitted",
			log.StageKey, step.Name,
			log.SamplesKey, r,
		)
	}

	p.state().SetDimensions(c, r)
	p.state().SetFitted()
	return Xt, nil
}

// Transform applies all steps to the data.
func (p *Pipeline) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := p.state().RequireFitted("Pipeline", "Transform"); err != nil {
		return nil, err
	}

	Xt := X
	var err error
	for _, step := range p.Steps {
		Xt, err = step.Transformer.Transform(Xt)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to transform at step '%s'", step.Name))
		}
	}
	return Xt, nil
}

// InverseTransform applies inverse transformations in reverse order.
// Only works if all steps have an InverseTransform method.
func (p *Pipeline) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := p.state().RequireFitted("Pipeline", "InverseTransform"); err != nil {
		return nil, err
	}

	Xt := X
	var err error
	for i := len(p.Steps) - 1; i >= 0; i-- {
		step := p.Steps[i]
		inverseTransformer, ok := step.Transformer.(interface {
			InverseTransform(mat.Matrix) (mat.Matrix, error)
		})
		if !ok {
			return nil, errors.NewValidationError(
				"pipeline step",
				"all steps must have InverseTransform method",
				step.Name,
			)
		}

		Xt, err = inverseTransformer.InverseTransform(Xt)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("failed to inverse transform at step '%s'", step.Name))
		}
	}
	return Xt, nil
}

// FeatureNamesOut threads column names through every step that can rename
// them. Steps without FeatureNamesOut keep the names unchanged.
func (p *Pipeline) FeatureNamesOut(input []string) []string {
	names := append([]string(nil), input...)
	for _, step := range p.Steps {
		if namer, ok := step.Transformer.(model.FeatureNamer); ok {
			names = namer.FeatureNamesOut(names)
		}
	}
	return names
}

// GetParams returns the parameters of every step, prefixed with the step
// name as in scikit-learn ("imputer__strategy").
func (p *Pipeline) GetParams() map[string]interface{} {
	params := make(map[string]interface{})
	names := make([]string, len(p.Steps))
	for i, step := range p.Steps {
		names[i] = step.Name
		if getter, ok := step.Transformer.(model.ParameterGetter); ok {
			for key, value := range getter.GetParams() {
				params[fmt.Sprintf("%s__%s", step.Name, key)] = value
			}
		}
	}
	params["steps"] = names
	return params
}

// NamedSteps returns the steps as a map for easy access by name.
func (p *Pipeline) NamedSteps() map[string]model.Transformer {
	named := make(map[string]model.Transformer, len(p.Steps))
	for _, step := range p.Steps {
		named[step.Name] = step.Transformer
	}
	return named
}

func (p *Pipeline) state() *model.StateManager {
	if p.State == nil {
		p.State = model.NewStateManager()
	}
	return p.State
}

func (p *Pipeline) log() log.Logger {
	if p.logger == nil {
		p.logger = log.GetLoggerWithName("Pipeline")
	}
	return p.logger
}
