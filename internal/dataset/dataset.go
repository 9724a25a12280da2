// Package dataset models labeled plant bioelectric recordings: raw
// multi-electrode voltage traces with stimulus marks, and the windowed
// datapoints cut from them that the feature pipeline consumes.
package dataset

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/phytolab/phyto.signal/internal/signal"
)

// LabelNull marks a segment with no stimulus.
const LabelNull = "null"

// Stimulus is a labeled event on a plant: a type such as "ozone" and the
// reading index at which it was applied.
type Stimulus struct {
	Type  string
	Index int
}

// Recording is one experiment on one plant. Readings is channel-major,
// one series per electrode; all stimuli share the reading index space.
type Recording struct {
	Name       string
	Readings   signal.Sample
	Stimuli    []Stimulus
	SampleRate float64
}

// Datapoint pairs a stimulus label with one windowed recording segment.
type Datapoint struct {
	Label  string
	Sample signal.Sample
}

// Segment cuts one window per stimulus from the recording: baseline
// points before the stimulus index followed by windowOffset response
// points after it. Stimuli too close to either end of the recording are
// skipped, they cannot fill a window.
func (r *Recording) Segment(baseline, windowOffset int) ([]Datapoint, error) {
	if baseline < 0 || windowOffset < 1 {
		return nil, fmt.Errorf("dataset: invalid segment geometry (baseline=%d, window offset=%d)", baseline, windowOffset)
	}
	if len(r.Readings) == 0 {
		return nil, fmt.Errorf("dataset: recording %q has no readings", r.Name)
	}
	length := len(r.Readings[0])

	var points []Datapoint
	for _, stim := range r.Stimuli {
		start := stim.Index - baseline
		end := stim.Index + windowOffset
		if start < 0 || end > length {
			continue
		}
		window := make(signal.Sample, len(r.Readings))
		for c, ch := range r.Readings {
			window[c] = ch[start:end]
		}
		points = append(points, Datapoint{Label: stim.Type, Sample: window})
	}
	return points, nil
}

// SegmentNull cuts non-overlapping windows of the same geometry from
// stimulus-free stretches of the recording and labels them "null". A
// window qualifies when no stimulus falls inside it or within windowOffset
// points before it, so lingering responses do not contaminate the null
// class.
func (r *Recording) SegmentNull(baseline, windowOffset int) ([]Datapoint, error) {
	if baseline < 0 || windowOffset < 1 {
		return nil, fmt.Errorf("dataset: invalid segment geometry (baseline=%d, window offset=%d)", baseline, windowOffset)
	}
	if len(r.Readings) == 0 {
		return nil, fmt.Errorf("dataset: recording %q has no readings", r.Name)
	}
	length := len(r.Readings[0])
	size := baseline + windowOffset

	var points []Datapoint
	for start := 0; start+size <= length; start += size {
		end := start + size
		clear := true
		for _, stim := range r.Stimuli {
			if stim.Index >= start-windowOffset && stim.Index < end {
				clear = false
				break
			}
		}
		if !clear {
			continue
		}
		window := make(signal.Sample, len(r.Readings))
		for c, ch := range r.Readings {
			window[c] = ch[start:end]
		}
		points = append(points, Datapoint{Label: LabelNull, Sample: window})
	}
	return points, nil
}

// SegmentAll segments every recording, stimulus windows plus null windows,
// and concatenates the datapoints.
func SegmentAll(recordings []*Recording, baseline, windowOffset int) ([]Datapoint, error) {
	var points []Datapoint
	for _, r := range recordings {
		stim, err := r.Segment(baseline, windowOffset)
		if err != nil {
			return nil, fmt.Errorf("recording %q: %w", r.Name, err)
		}
		null, err := r.SegmentNull(baseline, windowOffset)
		if err != nil {
			return nil, fmt.Errorf("recording %q: %w", r.Name, err)
		}
		points = append(points, stim...)
		points = append(points, null...)
	}
	return points, nil
}

// FilterTypes keeps only datapoints whose label is in the given set.
func FilterTypes(points []Datapoint, labels []string) []Datapoint {
	keep := make(map[string]bool, len(labels))
	for _, l := range labels {
		keep[l] = true
	}
	var out []Datapoint
	for _, p := range points {
		if keep[p.Label] {
			out = append(out, p)
		}
	}
	return out
}

// GroupTypes groups datapoints by label. Group order is sorted by label so
// iteration is deterministic.
func GroupTypes(points []Datapoint) ([]string, map[string][]Datapoint) {
	groups := make(map[string][]Datapoint)
	for _, p := range points {
		groups[p.Label] = append(groups[p.Label], p)
	}
	labels := make([]string, 0, len(groups))
	for l := range groups {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels, groups
}

// Balance undersamples every class to the size of the smallest, drawing
// without replacement using the given source so runs are reproducible.
func Balance(points []Datapoint, rng *rand.Rand) []Datapoint {
	labels, groups := GroupTypes(points)
	if len(labels) == 0 {
		return nil
	}
	minCount := len(points)
	for _, l := range labels {
		if n := len(groups[l]); n < minCount {
			minCount = n
		}
	}
	var out []Datapoint
	for _, l := range labels {
		group := groups[l]
		rng.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })
		out = append(out, group[:minCount]...)
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Split separates datapoints into batch and label slices for the
// extractor.
func Split(points []Datapoint) ([]signal.Sample, []string) {
	batch := make([]signal.Sample, len(points))
	labels := make([]string, len(points))
	for i, p := range points {
		batch[i] = p.Sample
		labels[i] = p.Label
	}
	return batch, labels
}
