package signal

import "fmt"

// Stage is one named step of a pipeline. Names appear in error messages
// and in the persisted description of an extraction run.
type Stage struct {
	Name      string
	Transform Transform
}

// Pipeline is an ordered composition of transforms: the output batch of
// stage k is the input of stage k+1. A Pipeline is itself a Transform, so
// pipelines nest.
type Pipeline struct {
	stages []Stage
}

// NewPipeline constructs a pipeline from the given stages. At least one
// stage is required and names must be unique.
func NewPipeline(stages ...Stage) (*Pipeline, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("pipeline: no stages")
	}
	seen := make(map[string]bool, len(stages))
	for i, st := range stages {
		if st.Name == "" {
			return nil, fmt.Errorf("pipeline: stage %d has no name", i)
		}
		if st.Transform == nil {
			return nil, fmt.Errorf("pipeline: stage %q has no transform", st.Name)
		}
		if seen[st.Name] {
			return nil, fmt.Errorf("pipeline: duplicate stage name %q", st.Name)
		}
		seen[st.Name] = true
	}
	return &Pipeline{stages: stages}, nil
}

// Fit fits each stage on the (progressively transformed) batch in order.
// Only fit-parameterized stages such as the scaler learn anything; the
// rest pass through. Fitting must use the training split only, the caller
// is responsible for not leaking validation data in here.
func (p *Pipeline) Fit(batch []Sample, labels []string) error {
	cur := batch
	for _, st := range p.stages {
		if err := st.Transform.Fit(cur, labels); err != nil {
			return fmt.Errorf("pipeline stage %q: fit: %w", st.Name, err)
		}
		next, err := st.Transform.Apply(cur)
		if err != nil {
			return fmt.Errorf("pipeline stage %q: %w", st.Name, err)
		}
		cur = next
	}
	return nil
}

// Apply runs the batch through every stage in order.
func (p *Pipeline) Apply(batch []Sample) ([]Sample, error) {
	cur := batch
	for _, st := range p.stages {
		next, err := st.Transform.Apply(cur)
		if err != nil {
			return nil, fmt.Errorf("pipeline stage %q: %w", st.Name, err)
		}
		cur = next
	}
	return cur, nil
}

// Describe returns the stage names in order, used to label persisted
// extraction runs.
func (p *Pipeline) Describe() []string {
	names := make([]string, len(p.stages))
	for i, st := range p.stages {
		names[i] = st.Name
	}
	return names
}
