package signal

import (
	"math"
	"testing"
)

func TestWaveletValidation(t *testing.T) {
	tests := []struct {
		name        string
		kind        WaveletKind
		level, drop int
		wantErr     bool
	}{
		{"haar ok", WaveletHaar, 3, 0, false},
		{"db4 ok", WaveletDB4, 2, 1, false},
		{"drop equals level", WaveletHaar, 3, 3, true},
		{"drop exceeds level", WaveletHaar, 2, 3, true},
		{"negative drop", WaveletHaar, 2, -1, true},
		{"zero level", WaveletHaar, 0, 0, true},
		{"unknown kind", WaveletKind("sym5"), 3, 0, true},
	}
	for _, tt := range tests {
		_, err := NewDiscreteWavelet(tt.kind, tt.level, tt.drop, true)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: NewDiscreteWavelet() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestWaveletBandRetention(t *testing.T) {
	x := make([]float64, 32)
	for i := range x {
		x[i] = math.Sin(float64(i) / 3)
	}

	// D=0 retains all L decomposition bands as separate channels.
	wt, err := NewDiscreteWavelet(WaveletHaar, 3, 0, false)
	if err != nil {
		t.Fatalf("NewDiscreteWavelet() error = %v", err)
	}
	out, err := wt.Apply([]Sample{SingleChannel(x)})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := len(out[0]); got != 3 {
		t.Errorf("D=0 retained %d bands, want 3", got)
	}
	// Bands are ordered coarsest first and halve in length.
	wantLens := []int{4, 4, 8}
	for i, band := range out[0] {
		if len(band) != wantLens[i] {
			t.Errorf("band %d length = %d, want %d", i, len(band), wantLens[i])
		}
	}

	// D=L-1 retains only the coarsest band.
	wt, err = NewDiscreteWavelet(WaveletHaar, 3, 2, false)
	if err != nil {
		t.Fatalf("NewDiscreteWavelet() error = %v", err)
	}
	out, err = wt.Apply([]Sample{SingleChannel(x)})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := len(out[0]); got != 1 {
		t.Errorf("D=L-1 retained %d bands, want 1", got)
	}
	if got := len(out[0][0]); got != 4 {
		t.Errorf("coarsest band length = %d, want 4", got)
	}
}

func TestWaveletConcat(t *testing.T) {
	x := ramp(16)
	wt, err := NewDiscreteWavelet(WaveletHaar, 2, 0, true)
	if err != nil {
		t.Fatalf("NewDiscreteWavelet() error = %v", err)
	}
	out, err := wt.Apply([]Sample{SingleChannel(x)})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := len(out[0]); got != 1 {
		t.Fatalf("concat produced %d channels, want 1", got)
	}
	// cA2 (4) + cD2 (4) concatenated.
	if got := len(out[0][0]); got != 8 {
		t.Errorf("concatenated length = %d, want 8", got)
	}
}

func TestWaveletHaarEnergy(t *testing.T) {
	// The Haar approximation of a constant signal carries all the energy;
	// detail coefficients vanish.
	x := make([]float64, 16)
	for i := range x {
		x[i] = 2
	}
	wt, err := NewDiscreteWavelet(WaveletHaar, 2, 0, false)
	if err != nil {
		t.Fatalf("NewDiscreteWavelet() error = %v", err)
	}
	out, err := wt.Apply([]Sample{SingleChannel(x)})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	for _, v := range out[0][0] {
		if !almostEqual(v, 4, 1e-9) { // 2 * sqrt(2) * sqrt(2)
			t.Errorf("approximation coefficient = %v, want 4", v)
		}
	}
	for band := 1; band < len(out[0]); band++ {
		for _, v := range out[0][band] {
			if !almostEqual(v, 0, 1e-9) {
				t.Errorf("detail band %d coefficient = %v, want 0", band, v)
			}
		}
	}
}
