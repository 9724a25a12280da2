package signal

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Detrend fits a line by least squares to the pre-stimulus segment of each
// channel (everything but the trailing windowOffset points), extrapolates
// it across the full sample, and subtracts it. This removes slow electrode
// drift without letting the stimulus response bias the fit.
type Detrend struct {
	stateless
	windowOffset int
}

// NewDetrend constructs the transform. windowOffset is the shared count of
// trailing points reserved as the post-stimulus boundary.
func NewDetrend(windowOffset int) (*Detrend, error) {
	if windowOffset < 0 {
		return nil, fmt.Errorf("detrend: negative window offset %d", windowOffset)
	}
	return &Detrend{windowOffset: windowOffset}, nil
}

func (t *Detrend) Apply(batch []Sample) ([]Sample, error) {
	return applyBatch("detrend", t.extract, batch)
}

func (t *Detrend) extract(s Sample) (Sample, error) {
	return perChannel(t.extractSeries, s)
}

func (t *Detrend) extractSeries(x []float64) ([]float64, error) {
	pre := len(x) - t.windowOffset
	if pre < 2 {
		return nil, fmt.Errorf("%w: %d pre-stimulus points, need at least 2 for a line fit", ErrDegenerate, pre)
	}
	times := make([]float64, pre)
	for i := range times {
		times[i] = float64(i)
	}
	c, m := stat.LinearRegression(times, x[:pre], nil, false)

	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v - (m*float64(i) + c)
	}
	return out, nil
}
