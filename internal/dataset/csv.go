package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/phytolab/phyto.signal/internal/signal"
)

// SaveDatapoints writes datapoints to a CSV file, one row per datapoint:
// the label followed by the channel-major flattened sample. All samples
// must share a channel count so LoadDatapoints can reshape them.
func SaveDatapoints(path string, points []Datapoint, channels int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create datapoint file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for i, p := range points {
		if len(p.Sample) != channels {
			return fmt.Errorf("datapoint %d: %d channels, want %d", i, len(p.Sample), channels)
		}
		row := make([]string, 0, 1+channels*len(p.Sample[0]))
		row = append(row, p.Label)
		for _, ch := range p.Sample {
			for _, v := range ch {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("datapoint %d: %w", i, err)
		}
	}
	w.Flush()
	return w.Error()
}

// LoadDatapoints reads datapoints from a CSV file written by
// SaveDatapoints, reshaping each row's values into the given channel
// count.
func LoadDatapoints(path string, channels int) ([]Datapoint, error) {
	if channels < 1 {
		return nil, fmt.Errorf("dataset: channel count %d must be >= 1", channels)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open datapoint file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows may differ in window length

	var points []Datapoint
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read datapoint file: %w", err)
	}
	for i, row := range rows {
		if len(row) < 1+channels {
			return nil, fmt.Errorf("row %d: too few fields (%d)", i, len(row))
		}
		values := row[1:]
		if len(values)%channels != 0 {
			return nil, fmt.Errorf("row %d: %d values not divisible into %d channels", i, len(values), channels)
		}
		perChannel := len(values) / channels
		sample := make(signal.Sample, channels)
		for c := range sample {
			sample[c] = make([]float64, perChannel)
			for j := 0; j < perChannel; j++ {
				v, err := strconv.ParseFloat(values[c*perChannel+j], 64)
				if err != nil {
					return nil, fmt.Errorf("row %d: %w", i, err)
				}
				sample[c][j] = v
			}
		}
		points = append(points, Datapoint{Label: row[0], Sample: sample})
	}
	return points, nil
}
