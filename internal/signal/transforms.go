package signal

import (
	"fmt"

	"github.com/phytolab/phyto.signal/internal/stats"
)

// MeanSubtract subtracts the sample mean of each channel from every point.
type MeanSubtract struct{ stateless }

// NewMeanSubtract constructs the transform.
func NewMeanSubtract() *MeanSubtract { return &MeanSubtract{} }

func (t *MeanSubtract) Apply(batch []Sample) ([]Sample, error) {
	return applyBatch("mean-subtract", t.extract, batch)
}

func (t *MeanSubtract) extract(s Sample) (Sample, error) {
	return perChannel(func(x []float64) ([]float64, error) {
		m, err := stats.Mean(x)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(x))
		for i, v := range x {
			out[i] = v - m
		}
		return out, nil
	}, s)
}

// Clip keeps the leading fraction of each channel, rounding the cut point
// down.
type Clip struct {
	stateless
	fraction float64
}

// NewClip constructs a Clip keeping the first len*fraction points.
// fraction must be in (0, 1].
func NewClip(fraction float64) (*Clip, error) {
	if fraction <= 0 || fraction > 1 {
		return nil, fmt.Errorf("clip: fraction %v out of range (0, 1]", fraction)
	}
	return &Clip{fraction: fraction}, nil
}

func (t *Clip) Apply(batch []Sample) ([]Sample, error) {
	return applyBatch("clip", t.extract, batch)
}

func (t *Clip) extract(s Sample) (Sample, error) {
	return perChannel(func(x []float64) ([]float64, error) {
		return x[:int(float64(len(x))*t.fraction)], nil
	}, s)
}

// Transpose swaps the time and channel axes of each sample.
type Transpose struct{ stateless }

// NewTranspose constructs the transform.
func NewTranspose() *Transpose { return &Transpose{} }

func (t *Transpose) Apply(batch []Sample) ([]Sample, error) {
	return applyBatch("transpose", t.extract, batch)
}

func (t *Transpose) extract(s Sample) (Sample, error) {
	if len(s) == 0 || len(s[0]) == 0 {
		return nil, ErrEmptySample
	}
	n := len(s[0])
	for c, ch := range s {
		if len(ch) != n {
			return nil, fmt.Errorf("%w: channel %d has %d points, want %d", ErrShapeMismatch, c, len(ch), n)
		}
	}
	out := make(Sample, n)
	for t2 := range out {
		out[t2] = make([]float64, len(s))
		for c := range s {
			out[t2][c] = s[c][t2]
		}
	}
	return out, nil
}

// ElectrodeAvg averages the two electrode channels into one.
type ElectrodeAvg struct{ stateless }

// NewElectrodeAvg constructs the transform.
func NewElectrodeAvg() *ElectrodeAvg { return &ElectrodeAvg{} }

func (t *ElectrodeAvg) Apply(batch []Sample) ([]Sample, error) {
	return applyBatch("electrode-avg", t.extract, batch)
}

func (t *ElectrodeAvg) extract(s Sample) (Sample, error) {
	a, b, err := electrodePair(s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = (a[i] + b[i]) / 2
	}
	return SingleChannel(out), nil
}

// ElectrodeDiff takes the difference of the two electrode channels.
type ElectrodeDiff struct{ stateless }

// NewElectrodeDiff constructs the transform.
func NewElectrodeDiff() *ElectrodeDiff { return &ElectrodeDiff{} }

func (t *ElectrodeDiff) Apply(batch []Sample) ([]Sample, error) {
	return applyBatch("electrode-diff", t.extract, batch)
}

func (t *ElectrodeDiff) extract(s Sample) (Sample, error) {
	a, b, err := electrodePair(s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return SingleChannel(out), nil
}

func electrodePair(s Sample) ([]float64, []float64, error) {
	if len(s) != 2 {
		return nil, nil, fmt.Errorf("%w: got %d channels, want 2 electrodes", ErrShapeMismatch, len(s))
	}
	if len(s[0]) != len(s[1]) {
		return nil, nil, fmt.Errorf("%w: electrode lengths %d and %d differ", ErrShapeMismatch, len(s[0]), len(s[1]))
	}
	return s[0], s[1], nil
}

// PostStimulus drops everything before offset-windowOffset, keeping the
// stimulus response onward. A negative start index counts from the end of
// the sample, so with offset < windowOffset the kept region is the
// trailing windowOffset-offset points.
type PostStimulus struct {
	stateless
	offset       int
	windowOffset int
}

// NewPostStimulus constructs the transform. windowOffset is the shared
// count of trailing points reserved as the post-stimulus boundary.
func NewPostStimulus(offset, windowOffset int) (*PostStimulus, error) {
	if windowOffset < 0 {
		return nil, fmt.Errorf("post-stimulus: negative window offset %d", windowOffset)
	}
	return &PostStimulus{offset: offset, windowOffset: windowOffset}, nil
}

func (t *PostStimulus) Apply(batch []Sample) ([]Sample, error) {
	return applyBatch("post-stimulus", t.extract, batch)
}

func (t *PostStimulus) extract(s Sample) (Sample, error) {
	return perChannel(func(x []float64) ([]float64, error) {
		start := t.offset - t.windowOffset
		if start < 0 {
			start += len(x)
		}
		if start < 0 || start > len(x) {
			return nil, fmt.Errorf("%w: start index %d outside %d-point signal", ErrDegenerate, t.offset-t.windowOffset, len(x))
		}
		return x[start:], nil
	}, s)
}

// PreStimulus keeps only the baseline segment, everything but the
// trailing windowOffset points. A classifier that performs well on
// pre-stimulus-only data is leaking experiment context, not detecting the
// stimulus.
type PreStimulus struct {
	stateless
	windowOffset int
}

// NewPreStimulus constructs the transform.
func NewPreStimulus(windowOffset int) (*PreStimulus, error) {
	if windowOffset < 0 {
		return nil, fmt.Errorf("pre-stimulus: negative window offset %d", windowOffset)
	}
	return &PreStimulus{windowOffset: windowOffset}, nil
}

func (t *PreStimulus) Apply(batch []Sample) ([]Sample, error) {
	return applyBatch("pre-stimulus", t.extract, batch)
}

func (t *PreStimulus) extract(s Sample) (Sample, error) {
	return perChannel(func(x []float64) ([]float64, error) {
		if t.windowOffset >= len(x) {
			return nil, fmt.Errorf("%w: window offset %d leaves no baseline in %d-point signal", ErrDegenerate, t.windowOffset, len(x))
		}
		return x[:len(x)-t.windowOffset], nil
	}, s)
}

// Split partitions each channel into equal-length contiguous chunks,
// either by explicit chunk size (steps) or by dividing the length into
// divs parts. An optional inner operation is mapped over each chunk and
// the results concatenated.
type Split struct {
	stateless
	steps int
	divs  int
	inner Inner
}

// NewSplit constructs a Split. Exactly one of steps and divs must be
// positive; the other must be zero. inner may be the zero Inner, in which
// case chunks pass through unchanged.
func NewSplit(steps, divs int, inner Inner) (*Split, error) {
	if (steps > 0) == (divs > 0) {
		return nil, fmt.Errorf("split: exactly one of steps (%d) and divs (%d) must be set", steps, divs)
	}
	if steps < 0 || divs < 0 {
		return nil, fmt.Errorf("split: negative parameter (steps=%d, divs=%d)", steps, divs)
	}
	return &Split{steps: steps, divs: divs, inner: inner}, nil
}

func (t *Split) Apply(batch []Sample) ([]Sample, error) {
	return applyBatch("split", t.extract, batch)
}

func (t *Split) extract(s Sample) (Sample, error) {
	return perChannel(t.extractSeries, s)
}

func (t *Split) extractSeries(x []float64) ([]float64, error) {
	size := t.steps
	if t.divs > 0 {
		if len(x)%t.divs != 0 {
			return nil, fmt.Errorf("%w: length %d not divisible into %d parts", ErrShapeMismatch, len(x), t.divs)
		}
		size = len(x) / t.divs
	} else if len(x)%size != 0 {
		return nil, fmt.Errorf("%w: length %d not divisible by step %d", ErrShapeMismatch, len(x), size)
	}
	if size == 0 {
		return nil, ErrEmptySample
	}

	var out []float64
	for i := 0; i+size <= len(x); i += size {
		chunk := x[i : i+size]
		if t.inner.valid() {
			r, err := t.inner.applySeries(chunk)
			if err != nil {
				return nil, err
			}
			out = append(out, r...)
		} else {
			out = append(out, chunk...)
		}
	}
	return out, nil
}
