package signal

import (
	"fmt"
	"math"
)

// firTaps is the length of the anti-aliasing low-pass filter used before
// downsampling, matching the conventional 30-tap FIR decimator.
const firTaps = 30

// Decimate low-pass filters each channel and keeps every factor-th point.
// factor=1 is the identity transform.
type Decimate struct {
	stateless
	factor int
	taps   []float64
}

// NewDecimate constructs a Decimate. factor must be >= 1.
func NewDecimate(factor int) (*Decimate, error) {
	if factor < 1 {
		return nil, fmt.Errorf("decimate: factor %d must be >= 1", factor)
	}
	d := &Decimate{factor: factor}
	if factor > 1 {
		d.taps = lowpassFIR(firTaps, 1/float64(factor))
	}
	return d, nil
}

func (t *Decimate) Apply(batch []Sample) ([]Sample, error) {
	return applyBatch("decimate", t.extract, batch)
}

func (t *Decimate) extract(s Sample) (Sample, error) {
	return perChannel(t.extractSeries, s)
}

func (t *Decimate) extractSeries(x []float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrEmptySample
	}
	if t.factor == 1 {
		return x, nil
	}
	filtered := firFilter(t.taps, x)
	out := make([]float64, 0, (len(x)+t.factor-1)/t.factor)
	for i := 0; i < len(filtered); i += t.factor {
		out = append(out, filtered[i])
	}
	return out, nil
}

// lowpassFIR designs an n-tap Hamming-windowed sinc low-pass filter with
// the given normalised cutoff (1.0 = Nyquist), unity DC gain.
func lowpassFIR(n int, cutoff float64) []float64 {
	taps := make([]float64, n)
	mid := float64(n-1) / 2
	sum := 0.0
	for i := range taps {
		k := float64(i) - mid
		var v float64
		if k == 0 {
			v = cutoff
		} else {
			v = math.Sin(math.Pi*cutoff*k) / (math.Pi * k)
		}
		// Hamming window
		v *= 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		taps[i] = v
		sum += v
	}
	for i := range taps {
		taps[i] /= sum
	}
	return taps
}

// firFilter applies a causal FIR filter with zero initial state, the same
// convention as a direct-form lfilter pass.
func firFilter(taps, x []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		acc := 0.0
		for k, h := range taps {
			j := i - k
			if j < 0 {
				break
			}
			acc += h * x[j]
		}
		out[i] = acc
	}
	return out
}

// decimateScales are the power-of-two scales the multi-scale bank fans
// out across: 1, 2, 4, ..., 256.
var decimateScales = func() []int {
	s := make([]int, 9)
	for e := range s {
		s[e] = 1 << e
	}
	return s
}()

// DecimateWindow applies an inner operation to the signal decimated at
// every power-of-two scale from 1 to 256 and concatenates the results.
type DecimateWindow struct {
	stateless
	inner Inner
	banks []*Decimate
}

// NewDecimateWindow constructs the multi-scale decimation bank.
func NewDecimateWindow(inner Inner) (*DecimateWindow, error) {
	if !inner.valid() {
		return nil, fmt.Errorf("decimate-window: inner operation required")
	}
	banks := make([]*Decimate, len(decimateScales))
	for i, scale := range decimateScales {
		d, err := NewDecimate(scale)
		if err != nil {
			return nil, err
		}
		banks[i] = d
	}
	return &DecimateWindow{inner: inner, banks: banks}, nil
}

func (t *DecimateWindow) Apply(batch []Sample) ([]Sample, error) {
	return applyBatch("decimate-window", t.extract, batch)
}

func (t *DecimateWindow) extract(s Sample) (Sample, error) {
	return perChannel(func(x []float64) ([]float64, error) {
		var out []float64
		for i, d := range t.banks {
			dec, err := d.extractSeries(x)
			if err != nil {
				return nil, fmt.Errorf("scale %d: %w", decimateScales[i], err)
			}
			r, err := t.inner.applySeries(dec)
			if err != nil {
				return nil, fmt.Errorf("scale %d: %w", decimateScales[i], err)
			}
			out = append(out, r...)
		}
		return out, nil
	}, s)
}
