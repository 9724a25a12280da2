// Package classify defines the downstream classifier contract consumed by
// the feature pipeline and a nearest-centroid reference implementation.
// The pipeline treats the classifier as opaque: anything satisfying the
// interface can sit at the end of a feature chain.
package classify

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/phytolab/phyto.signal/internal/dataset"
)

// Classifier is the fit/predict contract at the end of a feature pipeline.
type Classifier interface {
	Fit(features [][]float64, labels []string) error
	Predict(features [][]float64) ([]string, error)
}

// NearestCentroid classifies a feature vector as the class whose training
// centroid is nearest in Euclidean distance. It exists so the end-to-end
// flow has a working consumer; it makes no attempt at being a good model.
type NearestCentroid struct {
	labels    []string
	centroids [][]float64
}

// NewNearestCentroid constructs an unfitted classifier.
func NewNearestCentroid() *NearestCentroid { return &NearestCentroid{} }

// Fit computes one centroid per class.
func (c *NearestCentroid) Fit(features [][]float64, labels []string) error {
	if len(features) == 0 {
		return fmt.Errorf("classify: no training data")
	}
	if len(features) != len(labels) {
		return fmt.Errorf("classify: %d feature rows, %d labels", len(features), len(labels))
	}
	width := len(features[0])

	sums := make(map[string][]float64)
	counts := make(map[string]int)
	for i, row := range features {
		if len(row) != width {
			return fmt.Errorf("classify: row %d has %d features, want %d", i, len(row), width)
		}
		if sums[labels[i]] == nil {
			sums[labels[i]] = make([]float64, width)
		}
		floats.Add(sums[labels[i]], row)
		counts[labels[i]]++
	}

	c.labels = c.labels[:0]
	for label := range sums {
		c.labels = append(c.labels, label)
	}
	sort.Strings(c.labels)

	c.centroids = make([][]float64, len(c.labels))
	for i, label := range c.labels {
		centroid := sums[label]
		floats.Scale(1/float64(counts[label]), centroid)
		c.centroids[i] = centroid
	}
	return nil
}

// Predict assigns each row the label of its nearest centroid.
func (c *NearestCentroid) Predict(features [][]float64) ([]string, error) {
	if len(c.centroids) == 0 {
		return nil, fmt.Errorf("classify: not fitted")
	}
	out := make([]string, len(features))
	for i, row := range features {
		if len(row) != len(c.centroids[0]) {
			return nil, fmt.Errorf("classify: row %d has %d features, want %d", i, len(row), len(c.centroids[0]))
		}
		best := 0
		bestDist := math.Inf(1)
		for j, centroid := range c.centroids {
			if d := floats.Distance(row, centroid, 2); d < bestDist {
				best, bestDist = j, d
			}
		}
		out[i] = c.labels[best]
	}
	return out, nil
}

// SplitTrainValid shuffles datapoints and splits them into training and
// validation sets by fraction. Splitting happens before any scaler is
// fitted so validation data never leaks into training statistics.
func SplitTrainValid(points []dataset.Datapoint, trainFrac float64, rng *rand.Rand) (train, valid []dataset.Datapoint, err error) {
	if trainFrac <= 0 || trainFrac >= 1 {
		return nil, nil, fmt.Errorf("classify: train fraction %v out of range (0, 1)", trainFrac)
	}
	shuffled := make([]dataset.Datapoint, len(points))
	copy(shuffled, points)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	cut := int(trainFrac * float64(len(shuffled)))
	return shuffled[:cut], shuffled[cut:], nil
}

// Evaluation summarizes classifier performance on a labeled set.
type Evaluation struct {
	Total     int
	Correct   int
	Accuracy  float64
	Confusion map[string]map[string]int // actual -> predicted -> count
}

// Evaluate predicts on the given set and tallies accuracy and confusion
// counts.
func Evaluate(c Classifier, features [][]float64, labels []string) (*Evaluation, error) {
	predicted, err := c.Predict(features)
	if err != nil {
		return nil, err
	}
	if len(predicted) != len(labels) {
		return nil, fmt.Errorf("classify: %d predictions for %d labels", len(predicted), len(labels))
	}

	ev := &Evaluation{
		Total:     len(labels),
		Confusion: make(map[string]map[string]int),
	}
	for i, actual := range labels {
		if ev.Confusion[actual] == nil {
			ev.Confusion[actual] = make(map[string]int)
		}
		ev.Confusion[actual][predicted[i]]++
		if predicted[i] == actual {
			ev.Correct++
		}
	}
	if ev.Total > 0 {
		ev.Accuracy = float64(ev.Correct) / float64(ev.Total)
	}
	return ev, nil
}
