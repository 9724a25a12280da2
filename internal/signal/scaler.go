package signal

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler standardizes terminal feature vectors to zero mean and
// unit variance per feature column. Fit learns the column statistics from
// the training batch; Apply uses them unchanged, so transforming a
// validation batch never alters the fitted parameters. A zero-variance
// column is centred but left unscaled.
type StandardScaler struct {
	mean []float64
	std  []float64
}

// NewStandardScaler constructs an unfitted scaler.
func NewStandardScaler() *StandardScaler { return &StandardScaler{} }

// Fit learns per-column mean and standard deviation from the batch. Every
// sample must flatten to the same width.
func (t *StandardScaler) Fit(batch []Sample, labels []string) error {
	rows, err := Matrix(batch)
	if err != nil {
		return fmt.Errorf("scaler: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("scaler: %w", ErrEmptySample)
	}
	width := len(rows[0])
	t.mean = make([]float64, width)
	t.std = make([]float64, width)
	col := make([]float64, len(rows))
	for j := 0; j < width; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		m, s := stat.MeanStdDev(col, nil)
		t.mean[j] = m
		if s > 0 {
			t.std[j] = s
		} else {
			t.std[j] = 1
		}
	}
	return nil
}

// Apply standardizes each sample's flattened feature row with the fitted
// statistics.
func (t *StandardScaler) Apply(batch []Sample) ([]Sample, error) {
	if t.mean == nil {
		return nil, fmt.Errorf("scaler: not fitted")
	}
	return applyBatch("scaler", t.extract, batch)
}

func (t *StandardScaler) extract(s Sample) (Sample, error) {
	row := s.Flatten()
	if len(row) != len(t.mean) {
		return nil, fmt.Errorf("%w: %d features, scaler fitted on %d", ErrShapeMismatch, len(row), len(t.mean))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - t.mean[j]) / t.std[j]
	}
	return SingleChannel(out), nil
}

// Mean returns a copy of the fitted column means, nil before fitting.
func (t *StandardScaler) Mean() []float64 { return copySlice(t.mean) }

// Std returns a copy of the fitted column standard deviations, nil before
// fitting.
func (t *StandardScaler) Std() []float64 { return copySlice(t.std) }

func copySlice(x []float64) []float64 {
	if x == nil {
		return nil
	}
	out := make([]float64, len(x))
	copy(out, x)
	return out
}
