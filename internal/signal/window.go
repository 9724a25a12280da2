package signal

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/window"

	"github.com/phytolab/phyto.signal/internal/stats"
)

// Window splits each channel into n overlapping windows of size
// 2*len/(n+1) with stride size/2, optionally tapers each window with a
// Hann function, applies the inner operation to each window, and
// concatenates the results. With n=1 a single window spans the whole
// signal.
type Window struct {
	stateless
	inner Inner
	n     int
	hann  bool
}

// NewWindow constructs a Window. n must be >= 1 and an inner operation is
// required.
func NewWindow(inner Inner, n int, hann bool) (*Window, error) {
	if n < 1 {
		return nil, fmt.Errorf("window: count %d must be >= 1", n)
	}
	if !inner.valid() {
		return nil, fmt.Errorf("window: inner operation required")
	}
	return &Window{inner: inner, n: n, hann: hann}, nil
}

func (t *Window) Apply(batch []Sample) ([]Sample, error) {
	return applyBatch("window", t.extract, batch)
}

func (t *Window) extract(s Sample) (Sample, error) {
	return perChannel(t.extractSeries, s)
}

func (t *Window) extractSeries(x []float64) ([]float64, error) {
	size := 2 * len(x) / (t.n + 1)
	if size < 1 {
		return nil, fmt.Errorf("%w: %d points cannot carry %d windows", ErrDegenerate, len(x), t.n)
	}
	step := size / 2
	if step < 1 {
		step = 1
	}

	var out []float64
	for i := 0; i+size <= len(x); i += step {
		win := make([]float64, size)
		copy(win, x[i:i+size])
		if t.hann {
			window.Hann(win)
		}
		r, err := t.inner.applySeries(win)
		if err != nil {
			return nil, fmt.Errorf("window at %d: %w", i, err)
		}
		out = append(out, r...)
	}
	return out, nil
}

// MovingAvg computes a running mean over a sliding window of size n. The
// window sum is maintained incrementally (add the entering point,
// subtract the leaving one) so a full pass costs O(len) instead of
// O(len*n). Only full windows are emitted: the output has len-n+1 points,
// where output[i] averages x[i:i+n].
type MovingAvg struct {
	stateless
	n int
}

// NewMovingAvg constructs a MovingAvg. n must be >= 1.
func NewMovingAvg(n int) (*MovingAvg, error) {
	if n < 1 {
		return nil, fmt.Errorf("moving-avg: window %d must be >= 1", n)
	}
	return &MovingAvg{n: n}, nil
}

func (t *MovingAvg) Apply(batch []Sample) ([]Sample, error) {
	return applyBatch("moving-avg", t.extract, batch)
}

func (t *MovingAvg) extract(s Sample) (Sample, error) {
	return perChannel(t.extractSeries, s)
}

func (t *MovingAvg) extractSeries(x []float64) ([]float64, error) {
	if len(x) < t.n {
		return nil, fmt.Errorf("%w: %d points shorter than window %d", ErrDegenerate, len(x), t.n)
	}
	out := make([]float64, len(x)-t.n+1)
	sum := 0.0
	for i := 0; i < t.n; i++ {
		sum += x[i]
	}
	out[0] = sum / float64(t.n)
	for i := t.n; i < len(x); i++ {
		sum += x[i] - x[i-t.n]
		out[i-t.n+1] = sum / float64(t.n)
	}
	return out, nil
}

// Noise extracts the residual after subtracting the moving average of
// window n from the original signal. The output has len-n points:
// noise[i] = x[i+n/2] - avg[i], aligning each centred original point with
// the moving-average window covering it.
type Noise struct {
	stateless
	n   int
	avg *MovingAvg
}

// NewNoise constructs a Noise transform over the given window size.
func NewNoise(n int) (*Noise, error) {
	avg, err := NewMovingAvg(n)
	if err != nil {
		return nil, fmt.Errorf("noise: %w", err)
	}
	return &Noise{n: n, avg: avg}, nil
}

func (t *Noise) Apply(batch []Sample) ([]Sample, error) {
	return applyBatch("noise", t.extract, batch)
}

func (t *Noise) extract(s Sample) (Sample, error) {
	return perChannel(t.extractSeries, s)
}

func (t *Noise) extractSeries(x []float64) ([]float64, error) {
	if len(x) <= t.n {
		return nil, fmt.Errorf("%w: %d points leave no residual for window %d", ErrDegenerate, len(x), t.n)
	}
	avg, err := t.avg.extractSeries(x)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(x)-t.n)
	half := t.n / 2
	for i := range out {
		out[i] = x[i+half] - avg[i]
	}
	return out, nil
}

// meanSeries is a convenience inner operation reducing a window to its
// mean, useful for coarse envelope features.
func meanSeries(x []float64) ([]float64, error) {
	m, err := stats.Mean(x)
	if err != nil {
		return nil, err
	}
	return []float64{m}, nil
}

// MeanInner returns an Inner reducing each slice to its mean.
func MeanInner() Inner { return InnerFunc(meanSeries) }
