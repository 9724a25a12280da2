package classify

import (
	"math/rand"
	"testing"

	"github.com/phytolab/phyto.signal/internal/dataset"
)

func TestNearestCentroid(t *testing.T) {
	features := [][]float64{
		{0, 0}, {1, 0}, {0, 1},
		{10, 10}, {11, 10}, {10, 11},
	}
	labels := []string{"null", "null", "null", "ozone", "ozone", "ozone"}

	c := NewNearestCentroid()
	if err := c.Fit(features, labels); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	predicted, err := c.Predict([][]float64{{0.5, 0.5}, {9, 12}})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if predicted[0] != "null" {
		t.Errorf("Predict near origin = %q, want null", predicted[0])
	}
	if predicted[1] != "ozone" {
		t.Errorf("Predict near (10,10) = %q, want ozone", predicted[1])
	}
}

func TestNearestCentroidUnfitted(t *testing.T) {
	if _, err := NewNearestCentroid().Predict([][]float64{{1}}); err == nil {
		t.Error("Predict() before Fit() expected error")
	}
}

func TestNearestCentroidShapeErrors(t *testing.T) {
	c := NewNearestCentroid()
	if err := c.Fit([][]float64{{1, 2}, {1}}, []string{"a", "b"}); err == nil {
		t.Error("ragged feature rows expected error")
	}
	if err := c.Fit([][]float64{{1, 2}}, []string{"a", "b"}); err == nil {
		t.Error("label count mismatch expected error")
	}
}

func TestSplitTrainValid(t *testing.T) {
	points := make([]dataset.Datapoint, 100)
	for i := range points {
		points[i] = dataset.Datapoint{Label: "null"}
	}

	train, valid, err := SplitTrainValid(points, 0.75, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("SplitTrainValid() error = %v", err)
	}
	if len(train) != 75 || len(valid) != 25 {
		t.Errorf("split sizes = %d/%d, want 75/25", len(train), len(valid))
	}

	if _, _, err := SplitTrainValid(points, 1.5, rand.New(rand.NewSource(42))); err == nil {
		t.Error("out-of-range fraction expected error")
	}
}

func TestEvaluate(t *testing.T) {
	c := NewNearestCentroid()
	features := [][]float64{{0}, {10}}
	if err := c.Fit(features, []string{"null", "ozone"}); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	ev, err := Evaluate(c, [][]float64{{1}, {9}, {2}, {8}}, []string{"null", "ozone", "ozone", "ozone"})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if ev.Total != 4 || ev.Correct != 3 {
		t.Errorf("Evaluate() = %d/%d correct, want 3/4", ev.Correct, ev.Total)
	}
	if !almostEqual(ev.Accuracy, 0.75) {
		t.Errorf("Accuracy = %v, want 0.75", ev.Accuracy)
	}
	if ev.Confusion["ozone"]["null"] != 1 {
		t.Errorf("Confusion[ozone][null] = %d, want 1", ev.Confusion["ozone"]["null"])
	}
}

func almostEqual(a, b float64) bool {
	d := a - b
	return d < 1e-12 && d > -1e-12
}
