package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phytolab/phyto.signal/internal/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeBlockFixture lays out a two-block experiment directory with four
// electrode columns (two plants) and one mark per block.
func writeBlockFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	exp := filepath.Join(dir, "experiment-1")

	writeFile := func(path, body string) {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	}

	writeFile(filepath.Join(exp, "blk0", "blk_setting.txt"),
		"GAIN \t1\nSPEED \t0.1\nRANGE \t5\n")

	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "%d\t%d\t%d\t%d\t\n", i, i*2, i*3, i*4)
	}
	writeFile(filepath.Join(exp, "blk0", "data2.txt"), b.String())
	writeFile(filepath.Join(exp, "blk0", "marks.txt"),
		"name,comment,sample\nOzono_1,applied,10\n")

	b.Reset()
	for i := 20; i < 40; i++ {
		fmt.Fprintf(&b, "%d\t%d\t%d\t%d\t\n", i, i*2, i*3, i*4)
	}
	writeFile(filepath.Join(exp, "blk1", "data2.txt"), b.String())
	writeFile(filepath.Join(exp, "blk1", "marks.txt"),
		"name,comment,sample\nacqua piante_2,applied,5\nunknown thing,applied,7\n")

	return dir
}

func TestLoadBlockDir(t *testing.T) {
	root := writeBlockFixture(t)
	recordings, err := LoadAll(root)
	require.NoError(t, err)

	// Four electrode columns pair into two recordings.
	require.Len(t, recordings, 2)

	r := recordings[0]
	assert.Equal(t, "experiment-1-0", r.Name)
	assert.InDelta(t, 10.0, r.SampleRate, 1e-9) // 1 / 0.1

	// Two blocks of 20 rows each.
	require.Len(t, r.Readings, 2)
	assert.Len(t, r.Readings[0], 40)
	assert.Equal(t, 39.0, r.Readings[0][39])
	assert.Equal(t, 39.0*2, r.Readings[1][39])

	// Block 1's mark index is offset by block 0's 20 rows; the
	// unrecognized mark is dropped.
	require.Len(t, r.Stimuli, 2)
	assert.Equal(t, Stimulus{Type: "ozone", Index: 10}, r.Stimuli[0])
	assert.Equal(t, Stimulus{Type: "water", Index: 25}, r.Stimuli[1])
}

func TestDatapointCSVRoundTrip(t *testing.T) {
	points := []Datapoint{
		{Label: "ozone", Sample: signal.Sample{{1, 2, 3}, {4, 5, 6}}},
		{Label: "null", Sample: signal.Sample{{0.5, -0.25, 12.125}, {7, 8, 9}}},
	}
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, SaveDatapoints(path, points, 2))

	loaded, err := LoadDatapoints(path, 2)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, points[0].Label, loaded[0].Label)
	assert.Equal(t, points[0].Sample, loaded[0].Sample)
	assert.Equal(t, points[1].Sample, loaded[1].Sample)
}
