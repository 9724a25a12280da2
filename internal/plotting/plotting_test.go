package plotting

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveTracePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "trace.png")
	series := []TraceSeries{
		{Name: "raw", Values: []float64{1, 2, 3, 2, 1}},
		{Name: "detrended", Values: []float64{0, 1, 2, 1, 0}},
	}
	if err := SaveTracePNG(path, "test trace", series); err != nil {
		t.Fatalf("SaveTracePNG() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("output PNG is empty")
	}

	if err := SaveTracePNG(path, "empty", nil); err == nil {
		t.Error("no series expected error")
	}
}

func TestSaveFeatureScatter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scatter.html")
	features := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	labels := []string{"null", "ozone", "null"}

	if err := SaveFeatureScatter(path, features, labels, 0, 1); err != nil {
		t.Fatalf("SaveFeatureScatter() error = %v", err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	for _, class := range labels {
		if !strings.Contains(string(body), class) {
			t.Errorf("chart HTML missing class %q", class)
		}
	}

	if err := SaveFeatureScatter(path, features, labels, 0, 9); err == nil {
		t.Error("out-of-range feature index expected error")
	}
	if err := SaveFeatureScatter(path, features, labels, -1, 1); err == nil {
		t.Error("negative feature index expected error")
	}
}

func TestSaveFeatureHistogram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist.html")
	features := [][]float64{{0}, {1}, {2}, {3}, {10}}
	labels := []string{"a", "a", "b", "b", "b"}

	if err := SaveFeatureHistogram(path, features, labels, 0, 5); err != nil {
		t.Fatalf("SaveFeatureHistogram() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("output missing: %v", err)
	}

	if err := SaveFeatureHistogram(path, features, labels, 9, 5); err == nil {
		t.Error("out-of-range feature index expected error")
	}
	if err := SaveFeatureHistogram(path, features, labels, -1, 5); err == nil {
		t.Error("negative feature index expected error")
	}
}

func TestBinCounts(t *testing.T) {
	counts := BinCounts([]float64{0, 0.5, 1, 2.5, 4.99, 5}, 0, 1, 5)
	want := []int{2, 1, 1, 0, 2}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("bin %d = %d, want %d", i, counts[i], want[i])
		}
	}
}
