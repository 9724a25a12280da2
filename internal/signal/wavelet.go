package signal

import (
	"fmt"
	"math"
)

// WaveletKind selects the wavelet family used for decomposition.
type WaveletKind string

const (
	// WaveletHaar is the 2-tap Haar wavelet.
	WaveletHaar WaveletKind = "haar"
	// WaveletDB4 is the 4-tap Daubechies wavelet.
	WaveletDB4 WaveletKind = "db4"
)

// waveletFilters returns the decomposition low-pass and high-pass filter
// banks for a wavelet kind.
func waveletFilters(kind WaveletKind) (lo, hi []float64, err error) {
	switch kind {
	case WaveletHaar:
		s := 1 / math.Sqrt2
		lo = []float64{s, s}
	case WaveletDB4:
		r3 := math.Sqrt(3)
		d := 4 * math.Sqrt2
		lo = []float64{(1 + r3) / d, (3 + r3) / d, (3 - r3) / d, (1 - r3) / d}
	default:
		return nil, nil, fmt.Errorf("wavelet: unknown kind %q", kind)
	}
	hi = make([]float64, len(lo))
	for k := range lo {
		hi[k] = lo[len(lo)-1-k]
		if k%2 == 1 {
			hi[k] = -hi[k]
		}
	}
	return lo, hi, nil
}

// DiscreteWavelet performs a multilevel discrete wavelet decomposition of
// each channel to depth level, discards the drop finest detail bands, and
// either concatenates the remaining coefficient arrays into one vector or
// returns them as separate channels.
//
// The decomposition produces level+1 bands ordered coarsest first: the
// approximation at depth level followed by detail bands from coarsest to
// finest. Keeping level-drop bands means drop=0 retains all level
// decomposition bands and drop=level-1 retains only the coarsest.
type DiscreteWavelet struct {
	stateless
	kind   WaveletKind
	level  int
	drop   int
	concat bool
	lo, hi []float64
}

// NewDiscreteWavelet constructs the transform. level must be >= 1 and
// 0 <= drop < level.
func NewDiscreteWavelet(kind WaveletKind, level, drop int, concat bool) (*DiscreteWavelet, error) {
	if level < 1 {
		return nil, fmt.Errorf("wavelet: level %d must be >= 1", level)
	}
	if drop < 0 || drop >= level {
		return nil, fmt.Errorf("wavelet: drop %d must satisfy 0 <= drop < level %d", drop, level)
	}
	lo, hi, err := waveletFilters(kind)
	if err != nil {
		return nil, err
	}
	return &DiscreteWavelet{kind: kind, level: level, drop: drop, concat: concat, lo: lo, hi: hi}, nil
}

func (t *DiscreteWavelet) Apply(batch []Sample) ([]Sample, error) {
	return applyBatch("wavelet", t.extract, batch)
}

func (t *DiscreteWavelet) extract(s Sample) (Sample, error) {
	var out Sample
	for c, ch := range s {
		bands, err := t.decompose(ch)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", c, err)
		}
		kept := bands[:t.level-t.drop]
		if t.concat {
			var flat []float64
			for _, b := range kept {
				flat = append(flat, b...)
			}
			out = append(out, flat)
		} else {
			out = append(out, kept...)
		}
	}
	return out, nil
}

// decompose runs the cascade, returning level+1 coefficient bands ordered
// coarsest first: [cA_L, cD_L, ..., cD_1].
func (t *DiscreteWavelet) decompose(x []float64) ([][]float64, error) {
	if len(x) < len(t.lo) {
		return nil, fmt.Errorf("%w: %d points shorter than %s filter", ErrDegenerate, len(x), t.kind)
	}
	details := make([][]float64, 0, t.level)
	approx := x
	for l := 0; l < t.level; l++ {
		if len(approx) < 2 {
			return nil, fmt.Errorf("%w: signal exhausted at decomposition depth %d of %d", ErrDegenerate, l, t.level)
		}
		a, d := analyze(t.lo, t.hi, approx)
		details = append(details, d)
		approx = a
	}
	bands := make([][]float64, 0, t.level+1)
	bands = append(bands, approx)
	for i := len(details) - 1; i >= 0; i-- {
		bands = append(bands, details[i])
	}
	return bands, nil
}

// analyze performs one filter-bank step with periodic extension,
// producing half-length approximation and detail coefficients.
func analyze(lo, hi, x []float64) (approx, detail []float64) {
	n := len(x)
	half := (n + 1) / 2
	approx = make([]float64, half)
	detail = make([]float64, half)
	for i := 0; i < half; i++ {
		var a, d float64
		for k := range lo {
			v := x[(2*i+k)%n]
			a += lo[k] * v
			d += hi[k] * v
		}
		approx[i] = a
		detail[i] = d
	}
	return approx, detail
}
