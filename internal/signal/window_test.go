package signal

import (
	"errors"
	"testing"
)

func identityInner() Inner {
	return InnerFunc(func(x []float64) ([]float64, error) { return x, nil })
}

func TestWindowPointCount(t *testing.T) {
	tests := []struct {
		length, n   int
		wantSize    int
		wantWindows int
	}{
		{100, 3, 50, 3},
		{100, 1, 100, 1},
		{120, 4, 48, 4},
		{90, 2, 60, 2},
	}
	for _, tt := range tests {
		win, err := NewWindow(identityInner(), tt.n, false)
		if err != nil {
			t.Fatalf("NewWindow(n=%d) error = %v", tt.n, err)
		}
		out, err := win.Apply([]Sample{SingleChannel(ramp(tt.length))})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if got := len(out[0][0]); got != tt.wantSize*tt.wantWindows {
			t.Errorf("window(len=%d, N=%d) output = %d points, want %d windows of %d",
				tt.length, tt.n, got, tt.wantWindows, tt.wantSize)
		}
	}
}

func TestWindowSingleSpansWhole(t *testing.T) {
	win, err := NewWindow(identityInner(), 1, false)
	if err != nil {
		t.Fatalf("NewWindow() error = %v", err)
	}
	x := ramp(64)
	out, err := win.Apply([]Sample{SingleChannel(x)})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := len(out[0][0]); got != 64 {
		t.Fatalf("N=1 output length = %d, want 64", got)
	}
	for i, v := range out[0][0] {
		if v != x[i] {
			t.Fatalf("N=1 untapered window altered point %d: %v != %v", i, v, x[i])
		}
	}
}

func TestWindowHannTaper(t *testing.T) {
	win, err := NewWindow(identityInner(), 1, true)
	if err != nil {
		t.Fatalf("NewWindow() error = %v", err)
	}
	x := make([]float64, 64)
	for i := range x {
		x[i] = 1
	}
	out, err := win.Apply([]Sample{SingleChannel(x)})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	y := out[0][0]
	// Hann tapers the edges to zero and leaves the middle near one.
	if !almostEqual(y[0], 0, 1e-9) || !almostEqual(y[len(y)-1], 0, 1e-9) {
		t.Errorf("tapered edges = %v, %v, want 0", y[0], y[len(y)-1])
	}
	if y[len(y)/2] < 0.9 {
		t.Errorf("tapered middle = %v, want close to 1", y[len(y)/2])
	}
}

func TestWindowValidation(t *testing.T) {
	if _, err := NewWindow(identityInner(), 0, false); err == nil {
		t.Error("NewWindow(n=0) expected error")
	}
	if _, err := NewWindow(Inner{}, 3, false); err == nil {
		t.Error("NewWindow(zero Inner) expected error")
	}
}

func TestMovingAvg(t *testing.T) {
	avg, err := NewMovingAvg(4)
	if err != nil {
		t.Fatalf("NewMovingAvg() error = %v", err)
	}
	out, err := avg.Apply([]Sample{SingleChannel(ramp(10))})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	y := out[0][0]
	if len(y) != 7 {
		t.Fatalf("moving average length = %d, want 7", len(y))
	}
	// Average of a ramp window is its midpoint.
	for i, v := range y {
		if want := float64(i) + 1.5; !almostEqual(v, want, 1e-12) {
			t.Errorf("avg[%d] = %v, want %v", i, v, want)
		}
	}

	if _, err := NewMovingAvg(0); err == nil {
		t.Error("NewMovingAvg(0) expected error")
	}
}

func TestNoiseRecomposition(t *testing.T) {
	// original ≈ moving_avg + noise over the aligned valid region.
	n := 8
	x := make([]float64, 100)
	for i := range x {
		x[i] = float64(i%13) * 0.7
	}

	avgT, err := NewMovingAvg(n)
	if err != nil {
		t.Fatalf("NewMovingAvg() error = %v", err)
	}
	noiseT, err := NewNoise(n)
	if err != nil {
		t.Fatalf("NewNoise() error = %v", err)
	}

	avgOut, err := avgT.Apply([]Sample{SingleChannel(x)})
	if err != nil {
		t.Fatalf("MovingAvg error = %v", err)
	}
	noiseOut, err := noiseT.Apply([]Sample{SingleChannel(x)})
	if err != nil {
		t.Fatalf("Noise error = %v", err)
	}

	avg, noise := avgOut[0][0], noiseOut[0][0]
	if len(noise) != len(x)-n {
		t.Fatalf("noise length = %d, want %d", len(noise), len(x)-n)
	}
	for i := range noise {
		if got, want := avg[i]+noise[i], x[i+n/2]; !almostEqual(got, want, 1e-9) {
			t.Errorf("avg[%d]+noise[%d] = %v, want original %v", i, i, got, want)
		}
	}
}

func TestNoiseTooShort(t *testing.T) {
	noiseT, err := NewNoise(16)
	if err != nil {
		t.Fatalf("NewNoise() error = %v", err)
	}
	if _, err := noiseT.Apply([]Sample{SingleChannel(ramp(16))}); !errors.Is(err, ErrDegenerate) {
		t.Errorf("noise on short signal: error = %v, want ErrDegenerate", err)
	}
}
