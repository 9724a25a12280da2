// Package signal implements the feature-extraction pipeline for plant
// bioelectric recordings: a library of composable transforms that turn
// raw multi-electrode voltage windows into fixed-length feature vectors.
//
// A Sample is stored channel-major: Sample[c][t] is electrode c at time
// step t. One-dimensional signals are single-channel samples. Per-series
// transforms (windowing, decimation, wavelets, the feature ensemble) map
// over channels independently; cross-channel transforms (ElectrodeAvg,
// ElectrodeDiff, Transpose) operate on the whole sample.
package signal

import (
	"errors"
	"fmt"
)

// Sample is one datapoint's signal, channel-major.
type Sample [][]float64

// SingleChannel wraps a one-dimensional series as a Sample.
func SingleChannel(x []float64) Sample { return Sample{x} }

// FromTimeMajor converts a time-major matrix (rows are time steps,
// columns electrodes) into a channel-major Sample.
func FromTimeMajor(rows [][]float64) (Sample, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySample
	}
	channels := len(rows[0])
	s := make(Sample, channels)
	for c := range s {
		s[c] = make([]float64, len(rows))
	}
	for t, row := range rows {
		if len(row) != channels {
			return nil, fmt.Errorf("%w: row %d has %d channels, want %d", ErrShapeMismatch, t, len(row), channels)
		}
		for c, v := range row {
			s[c][t] = v
		}
	}
	return s, nil
}

// Flatten concatenates the sample's channels into one vector. This is how
// a terminal multi-band output becomes a feature row.
func (s Sample) Flatten() []float64 {
	if len(s) == 1 {
		return s[0]
	}
	n := 0
	for _, ch := range s {
		n += len(ch)
	}
	out := make([]float64, 0, n)
	for _, ch := range s {
		out = append(out, ch...)
	}
	return out
}

var (
	// ErrEmptySample reports a sample (or channel) with no points.
	ErrEmptySample = errors.New("signal: empty sample")

	// ErrShapeMismatch reports samples whose length or channel count is
	// incompatible with a transform or with the rest of the batch. It is
	// fatal for the batch: alignment cannot be recovered.
	ErrShapeMismatch = errors.New("signal: shape mismatch")

	// ErrDegenerate reports a per-datapoint degenerate signal (constant
	// segment, too few points). Callers choose whether to drop the
	// datapoint or abort, see Policy.
	ErrDegenerate = errors.New("signal: degenerate signal")
)

// Transform is the uniform interface every signal operation implements.
// Fit is a no-op for stateless transforms and learns batch statistics for
// the ones that need them (currently only the scaler). Apply maps the
// transform independently over each sample, preserving order and count.
type Transform interface {
	Fit(batch []Sample, labels []string) error
	Apply(batch []Sample) ([]Sample, error)
}

// stateless provides the no-op Fit shared by transforms that need no
// batch statistics.
type stateless struct{}

func (stateless) Fit(batch []Sample, labels []string) error { return nil }

// applyBatch maps a per-sample extractor over a batch, preserving order.
// The first error aborts and is annotated with the sample index.
func applyBatch(name string, ex func(Sample) (Sample, error), batch []Sample) ([]Sample, error) {
	out := make([]Sample, len(batch))
	for i, s := range batch {
		r, err := ex(s)
		if err != nil {
			return nil, fmt.Errorf("%s: sample %d: %w", name, i, err)
		}
		out[i] = r
	}
	return out, nil
}

// perChannel lifts a series extractor to a whole sample by mapping it
// over every channel.
func perChannel(ex func([]float64) ([]float64, error), s Sample) (Sample, error) {
	if len(s) == 0 {
		return nil, ErrEmptySample
	}
	out := make(Sample, len(s))
	for c, ch := range s {
		r, err := ex(ch)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", c, err)
		}
		out[c] = r
	}
	return out, nil
}

// Matrix converts a batch of terminal samples into a feature matrix, one
// row per datapoint. All rows must have equal length.
func Matrix(batch []Sample) ([][]float64, error) {
	if len(batch) == 0 {
		return nil, nil
	}
	rows := make([][]float64, len(batch))
	width := -1
	for i, s := range batch {
		row := s.Flatten()
		if width < 0 {
			width = len(row)
		} else if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrShapeMismatch, i, len(row), width)
		}
		rows[i] = row
	}
	return rows, nil
}
