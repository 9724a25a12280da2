package signal

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/phytolab/phyto.signal/internal/stats"
)

// Policy decides what happens when a single datapoint turns out to be
// degenerate (constant segment, too few points) during extraction.
type Policy int

const (
	// PropagateError aborts extraction on the first degenerate datapoint.
	PropagateError Policy = iota
	// DropBad silently drops degenerate datapoints, keeping the surviving
	// features and labels aligned. Shape mismatches still abort: they mean
	// the batch itself is inconsistent.
	DropBad
)

// Extractor runs a transform over a labeled batch one datapoint at a time,
// optionally in parallel, and assembles the terminal feature matrix.
// Datapoints are independent and the transform chain is stateless after
// fitting, so workers share nothing mutable.
type Extractor struct {
	transform Transform
	policy    Policy
	workers   int
}

// NewExtractor constructs an Extractor. workers <= 0 selects one worker
// per CPU.
func NewExtractor(t Transform, policy Policy, workers int) (*Extractor, error) {
	if t == nil {
		return nil, fmt.Errorf("extractor: transform required")
	}
	if policy != PropagateError && policy != DropBad {
		return nil, fmt.Errorf("extractor: unknown policy %d", policy)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Extractor{transform: t, policy: policy, workers: workers}, nil
}

// Extract applies the transform to every datapoint and returns the feature
// matrix with its aligned label vector. Under DropBad the returned slices
// may be shorter than the input; output row i always corresponds to the
// i-th surviving input datapoint, in input order.
func (e *Extractor) Extract(batch []Sample, labels []string) ([][]float64, []string, error) {
	if len(batch) != len(labels) {
		return nil, nil, fmt.Errorf("extractor: %w: %d samples, %d labels", ErrShapeMismatch, len(batch), len(labels))
	}

	results := make([]Sample, len(batch))
	errs := make([]error, len(batch))

	var wg sync.WaitGroup
	work := make(chan int)
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				out, err := e.transform.Apply([]Sample{batch[i]})
				if err != nil {
					errs[i] = err
					continue
				}
				results[i] = out[0]
			}
		}()
	}
	for i := range batch {
		work <- i
	}
	close(work)
	wg.Wait()

	kept := make([]Sample, 0, len(batch))
	keptLabels := make([]string, 0, len(labels))
	for i, err := range errs {
		if err != nil {
			if e.policy == DropBad && droppable(err) {
				continue
			}
			return nil, nil, fmt.Errorf("extractor: datapoint %d (%s): %w", i, labels[i], err)
		}
		kept = append(kept, results[i])
		keptLabels = append(keptLabels, labels[i])
	}

	matrix, err := Matrix(kept)
	if err != nil {
		return nil, nil, fmt.Errorf("extractor: %w", err)
	}
	return matrix, keptLabels, nil
}

// droppable reports whether an error is a per-datapoint degeneracy rather
// than a batch-level fault.
func droppable(err error) bool {
	return errors.Is(err, ErrDegenerate) ||
		errors.Is(err, ErrEmptySample) ||
		errors.Is(err, stats.ErrEmptyInput) ||
		errors.Is(err, stats.ErrZeroVariance)
}
