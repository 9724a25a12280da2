package dataset

import (
	"math/rand"
	"testing"

	"github.com/phytolab/phyto.signal/internal/signal"
)

func testRecording(length int, stimuli []Stimulus) *Recording {
	a := make([]float64, length)
	b := make([]float64, length)
	for i := range a {
		a[i] = float64(i)
		b[i] = float64(-i)
	}
	return &Recording{
		Name:       "test-0",
		Readings:   signal.Sample{a, b},
		Stimuli:    stimuli,
		SampleRate: 10,
	}
}

func TestSegmentGeometry(t *testing.T) {
	rec := testRecording(1000, []Stimulus{
		{Type: "ozone", Index: 500},
		{Type: "water", Index: 50},  // too close to the start for the baseline
		{Type: "ozone", Index: 950}, // too close to the end for the response
	})

	points, err := rec.Segment(100, 100)
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("Segment() produced %d datapoints, want 1", len(points))
	}
	p := points[0]
	if p.Label != "ozone" {
		t.Errorf("label = %q, want ozone", p.Label)
	}
	if len(p.Sample) != 2 {
		t.Fatalf("segment has %d channels, want 2", len(p.Sample))
	}
	if got := len(p.Sample[0]); got != 200 {
		t.Errorf("segment length = %d, want baseline+offset = 200", got)
	}
	// Baseline starts 100 points before the stimulus.
	if p.Sample[0][0] != 400 {
		t.Errorf("segment starts at reading %v, want 400", p.Sample[0][0])
	}
}

func TestSegmentNullAvoidsStimuli(t *testing.T) {
	rec := testRecording(1000, []Stimulus{{Type: "ozone", Index: 500}})

	points, err := rec.SegmentNull(100, 100)
	if err != nil {
		t.Fatalf("SegmentNull() error = %v", err)
	}
	if len(points) == 0 {
		t.Fatal("SegmentNull() produced no datapoints")
	}
	for _, p := range points {
		if p.Label != LabelNull {
			t.Errorf("null segment labeled %q", p.Label)
		}
		start := int(p.Sample[0][0])
		end := start + 200
		// The stimulus index (500) and its trailing response must not fall
		// inside any null window.
		if 500 >= start-100 && 500 < end {
			t.Errorf("null window [%d, %d) overlaps stimulus at 500", start, end)
		}
	}
}

func TestFilterAndGroup(t *testing.T) {
	points := []Datapoint{
		{Label: "ozone"}, {Label: "null"}, {Label: "water"}, {Label: "ozone"},
	}
	filtered := FilterTypes(points, []string{"null", "ozone"})
	if len(filtered) != 3 {
		t.Fatalf("FilterTypes() kept %d, want 3", len(filtered))
	}

	labels, groups := GroupTypes(filtered)
	if len(labels) != 2 || labels[0] != "null" || labels[1] != "ozone" {
		t.Errorf("GroupTypes() labels = %v, want [null ozone]", labels)
	}
	if len(groups["ozone"]) != 2 {
		t.Errorf("ozone group size = %d, want 2", len(groups["ozone"]))
	}
}

func TestBalance(t *testing.T) {
	var points []Datapoint
	for i := 0; i < 10; i++ {
		points = append(points, Datapoint{Label: "ozone"})
	}
	for i := 0; i < 3; i++ {
		points = append(points, Datapoint{Label: "null"})
	}

	balanced := Balance(points, rand.New(rand.NewSource(1)))
	if len(balanced) != 6 {
		t.Fatalf("Balance() kept %d, want 6", len(balanced))
	}
	counts := map[string]int{}
	for _, p := range balanced {
		counts[p.Label]++
	}
	if counts["ozone"] != 3 || counts["null"] != 3 {
		t.Errorf("Balance() counts = %v, want 3 per class", counts)
	}
}

func TestMatchStimulusType(t *testing.T) {
	tests := []struct {
		name     string
		wantType string
		wantOK   bool
	}{
		{"Ozono_3", "ozone", true},
		{"ozone", "ozone", true},
		{"O3 12", "ozone", true},
		{"O3", "ozone", true}, // the digit strip must not eat the alias itself
		{"o3_1", "ozone", true},
		{"acqua piante_2", "water", true},
		{"NaCl_1", "NaCL", true},
		{"light-on", "light-on", true},
		{"ozone nacl", "NaCL", true}, // ambiguous names resolve in sorted type order
		{"fertilizer", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := MatchStimulusType(tt.name)
		if got != tt.wantType || ok != tt.wantOK {
			t.Errorf("MatchStimulusType(%q) = %q, %v, want %q, %v", tt.name, got, ok, tt.wantType, tt.wantOK)
		}
	}
}

func TestCleanStimulusName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Ozono_3", "ozono"},
		{"ozono12", "ozono"},
		{"light-on", "light-on"},
		{" NaCl_07 ", "nacl"},
	}
	for _, tt := range tests {
		if got := CleanStimulusName(tt.in); got != tt.want {
			t.Errorf("CleanStimulusName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
