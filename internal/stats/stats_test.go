package stats

import (
	"errors"
	"math"
	"testing"
)

func TestMean_Basic(t *testing.T) {
	m, err := Mean([]float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Mean returned error: %v", err)
	}
	if m != 2.5 {
		t.Errorf("Mean = %v, want 2.5", m)
	}
}

func TestMean_Empty(t *testing.T) {
	_, err := Mean(nil)
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Mean(nil) err = %v, want ErrEmptyInput", err)
	}
}

func TestVariance_MatchesSecondMoment(t *testing.T) {
	x := []float64{1.5, -2, 0.25, 7, 3, 3, -1}
	v, err := Variance(x)
	if err != nil {
		t.Fatalf("Variance returned error: %v", err)
	}
	m2, err := Moment(x, 2)
	if err != nil {
		t.Fatalf("Moment returned error: %v", err)
	}
	if v != m2 {
		t.Errorf("Variance = %v, Moment(x,2) = %v, want equal", v, m2)
	}
}

func TestVariance_Constant(t *testing.T) {
	v, err := Variance([]float64{4, 4, 4, 4})
	if err != nil {
		t.Fatalf("Variance returned error: %v", err)
	}
	if v != 0 {
		t.Errorf("Variance of constant = %v, want 0", v)
	}
}

func TestSkewness_ZeroVariance(t *testing.T) {
	_, err := Skewness([]float64{2, 2, 2})
	if !errors.Is(err, ErrZeroVariance) {
		t.Errorf("Skewness err = %v, want ErrZeroVariance", err)
	}
}

func TestKurtosis_ZeroVariance(t *testing.T) {
	_, err := Kurtosis([]float64{2, 2, 2})
	if !errors.Is(err, ErrZeroVariance) {
		t.Errorf("Kurtosis err = %v, want ErrZeroVariance", err)
	}
}

func TestSkewness_Symmetric(t *testing.T) {
	s, err := Skewness([]float64{-2, -1, 0, 1, 2})
	if err != nil {
		t.Fatalf("Skewness returned error: %v", err)
	}
	if math.Abs(s) > 1e-12 {
		t.Errorf("Skewness of symmetric sequence = %v, want ~0", s)
	}
}

func TestKurtosis_Uniform(t *testing.T) {
	// Discrete uniform {-1, 0, 1}: m4 = 2/3, var = 2/3, kurtosis = 3/2 - 3.
	k, err := Kurtosis([]float64{-1, 0, 1})
	if err != nil {
		t.Fatalf("Kurtosis returned error: %v", err)
	}
	if math.Abs(k-(-1.5)) > 1e-12 {
		t.Errorf("Kurtosis = %v, want -1.5", k)
	}
}

func TestDifferential(t *testing.T) {
	d := Differential([]float64{1, 3, 2, 6})
	want := []float64{2, -1, 4}
	if len(d) != len(want) {
		t.Fatalf("Differential length = %d, want %d", len(d), len(want))
	}
	for i := range want {
		if d[i] != want[i] {
			t.Errorf("Differential[%d] = %v, want %v", i, d[i], want[i])
		}
	}
}

func TestDifferential_Short(t *testing.T) {
	if d := Differential([]float64{1}); len(d) != 0 {
		t.Errorf("Differential of single point length = %d, want 0", len(d))
	}
}

func TestMeanAbs(t *testing.T) {
	m, err := MeanAbs([]float64{-1, 2, -3})
	if err != nil {
		t.Fatalf("MeanAbs returned error: %v", err)
	}
	if m != 2 {
		t.Errorf("MeanAbs = %v, want 2", m)
	}
}
