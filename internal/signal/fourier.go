package signal

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// Fourier computes the real-input discrete Fourier transform of each
// channel. Only the non-negative frequencies are produced (len/2+1 bins)
// and the complex spectrum is emitted interleaved: re0, im0, re1, im1, ...
type Fourier struct{ stateless }

// NewFourier constructs the transform.
func NewFourier() *Fourier { return &Fourier{} }

func (t *Fourier) Apply(batch []Sample) ([]Sample, error) {
	return applyBatch("fourier", t.extract, batch)
}

func (t *Fourier) extract(s Sample) (Sample, error) {
	return perChannel(func(x []float64) ([]float64, error) {
		if len(x) == 0 {
			return nil, ErrEmptySample
		}
		fft := fourier.NewFFT(len(x))
		coeffs := fft.Coefficients(nil, x)
		out := make([]float64, 0, 2*len(coeffs))
		for _, c := range coeffs {
			out = append(out, real(c), imag(c))
		}
		return out, nil
	}, s)
}
