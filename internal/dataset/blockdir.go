package dataset

import (
	"encoding/csv"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/phytolab/phyto.signal/internal/signal"
)

// Block-directory recordings are laid out as a directory per experiment
// containing numbered blk0, blk1, ... subdirectories. Each block holds a
// tab-separated data2.txt with one reading row per time step and a
// marks.txt listing stimulus marks; blk0 additionally holds
// blk_setting.txt with the sampling settings. Reading indices in later
// blocks are offset by the cumulative length of the blocks before them.

// LoadAll walks a directory tree and loads every experiment directory
// (any directory containing a blk0 subdirectory).
func LoadAll(path string) ([]*Recording, error) {
	var recordings []*Recording
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if _, statErr := os.Stat(filepath.Join(p, "blk0")); statErr != nil {
			return nil
		}
		log.Printf("reading %s", p)
		recs, loadErr := LoadBlockDir(p)
		if loadErr != nil {
			return fmt.Errorf("%s: %w", p, loadErr)
		}
		recordings = append(recordings, recs...)
		return filepath.SkipDir
	})
	if err != nil {
		return nil, err
	}
	return recordings, nil
}

// LoadBlockDir loads one experiment directory, returning one Recording
// per electrode pair.
func LoadBlockDir(path string) ([]*Recording, error) {
	sampleRate, err := readSampleRate(filepath.Join(path, "blk0", "blk_setting.txt"))
	if err != nil {
		return nil, err
	}

	var rows [][]float64
	var marks []Stimulus
	markOffset := 0

	for i := 0; ; i++ {
		blk := filepath.Join(path, fmt.Sprintf("blk%d", i))
		if _, err := os.Stat(blk); err != nil {
			break
		}

		blockMarks, err := readMarks(filepath.Join(blk, "marks.txt"), markOffset)
		if err != nil {
			return nil, err
		}
		marks = append(marks, blockMarks...)

		blockRows, err := readReadings(filepath.Join(blk, "data2.txt"))
		if err != nil {
			return nil, err
		}
		rows = append(rows, blockRows...)
		markOffset += len(blockRows)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no readings under %s", path)
	}

	return buildRecordings(filepath.Base(path), rows, marks, sampleRate)
}

// readSampleRate finds the SPEED row of a tab-separated settings file.
func readSampleRate(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open settings: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to read settings: %w", err)
	}
	for _, row := range rows {
		if len(row) >= 2 && strings.TrimSpace(row[0]) == "SPEED" {
			period, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
			if err != nil {
				return 0, fmt.Errorf("bad SPEED value %q: %w", row[1], err)
			}
			if period == 0 {
				return 0, fmt.Errorf("zero SPEED value")
			}
			return 1 / period, nil
		}
	}
	return 0, fmt.Errorf("no SPEED row in %s", path)
}

// readMarks parses a comma-separated marks file: a header row, then
// name, comment, index rows. Indices are shifted by the cumulative offset
// of earlier blocks; unrecognized mark names are dropped.
func readMarks(path string, offset int) ([]Stimulus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open marks: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read marks: %w", err)
	}

	var marks []Stimulus
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("marks row %d: too few fields (%d)", i, len(row))
		}
		index, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil {
			return nil, fmt.Errorf("marks row %d: %w", i, err)
		}
		typ, ok := MatchStimulusType(row[0])
		if !ok {
			log.Printf("skipping unrecognized stimulus %q in %s", strings.TrimSpace(row[0]), path)
			continue
		}
		marks = append(marks, Stimulus{Type: typ, Index: index + offset})
	}
	return marks, nil
}

// readReadings parses a tab-separated data file, one row per time step.
// The trailing empty column produced by the acquisition software is
// dropped.
func readReadings(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open readings: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read readings: %w", err)
	}

	out := make([][]float64, 0, len(rows))
	for i, row := range rows {
		if len(row) > 0 && strings.TrimSpace(row[len(row)-1]) == "" {
			row = row[:len(row)-1]
		}
		if len(row) == 0 {
			continue
		}
		values := make([]float64, len(row))
		for j, field := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("readings row %d: %w", i, err)
			}
			values[j] = v
		}
		out = append(out, values)
	}
	return out, nil
}

// buildRecordings pairs adjacent electrode columns into Recordings: one
// plant per pair, all sharing the stimulus marks.
func buildRecordings(name string, rows [][]float64, marks []Stimulus, sampleRate float64) ([]*Recording, error) {
	sample, err := signal.FromTimeMajor(rows)
	if err != nil {
		return nil, err
	}
	if len(sample)%2 != 0 {
		return nil, fmt.Errorf("odd electrode count %d, expected pairs", len(sample))
	}

	var recordings []*Recording
	for i := 0; i*2 < len(sample); i++ {
		recordings = append(recordings, &Recording{
			Name:       fmt.Sprintf("%s-%d", name, i),
			Readings:   signal.Sample{sample[i*2], sample[i*2+1]},
			Stimuli:    marks,
			SampleRate: sampleRate,
		})
	}
	return recordings, nil
}
