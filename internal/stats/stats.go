// Package stats provides the primitive statistical kernel used by the
// signal transforms: population moments and successive differences over a
// finite numeric sequence.
//
// All moments use the population convention (divide by n) and kurtosis is
// excess kurtosis. Degenerate inputs are reported as errors rather than
// producing NaN: an empty sequence fails every function, and a constant
// sequence fails the variance-normalised shape measures.
package stats

import (
	"errors"
	"math"
)

var (
	// ErrEmptyInput is returned when a statistic is requested over an
	// empty sequence.
	ErrEmptyInput = errors.New("stats: empty input")

	// ErrZeroVariance is returned by variance-normalised statistics
	// (skewness, kurtosis) when the input is constant.
	ErrZeroVariance = errors.New("stats: zero variance")
)

// Mean returns the arithmetic mean of x.
func Mean(x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, ErrEmptyInput
	}
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x)), nil
}

// Moment returns the nth central moment of x: the average of (x_i - mean)^n.
func Moment(x []float64, n int) (float64, error) {
	m, err := Mean(x)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, v := range x {
		sum += math.Pow(v-m, float64(n))
	}
	return sum / float64(len(x)), nil
}

// Variance returns the population variance of x, the second central moment.
func Variance(x []float64) (float64, error) {
	return Moment(x, 2)
}

// Stdev returns the population standard deviation of x.
func Stdev(x []float64) (float64, error) {
	v, err := Variance(x)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// Skewness returns the third standardised moment of x.
func Skewness(x []float64) (float64, error) {
	v, err := Variance(x)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, ErrZeroVariance
	}
	m3, err := Moment(x, 3)
	if err != nil {
		return 0, err
	}
	return m3 / math.Pow(v, 1.5), nil
}

// Kurtosis returns the excess kurtosis of x: the fourth standardised
// moment minus 3, so a normal distribution scores zero.
func Kurtosis(x []float64) (float64, error) {
	v, err := Variance(x)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, ErrZeroVariance
	}
	m4, err := Moment(x, 4)
	if err != nil {
		return 0, err
	}
	return m4/(v*v) - 3, nil
}

// Differential returns the successive first differences of x. The result
// has length len(x)-1; an input shorter than two points yields an empty
// slice.
func Differential(x []float64) []float64 {
	if len(x) < 2 {
		return nil
	}
	d := make([]float64, len(x)-1)
	for i := 1; i < len(x); i++ {
		d[i-1] = x[i] - x[i-1]
	}
	return d
}

// MeanAbs returns the mean of the absolute values of x.
func MeanAbs(x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, ErrEmptyInput
	}
	sum := 0.0
	for _, v := range x {
		sum += math.Abs(v)
	}
	return sum / float64(len(x)), nil
}
