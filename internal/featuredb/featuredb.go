// Package featuredb persists datapoints and extraction runs in sqlite so
// feature searches can be compared across pipeline configurations without
// re-reading the raw recordings.
package featuredb

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/phytolab/phyto.signal/internal/dataset"
	"github.com/phytolab/phyto.signal/internal/signal"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// FeatureDB wraps the sqlite connection holding datapoints and extraction
// runs.
type FeatureDB struct {
	*sql.DB
}

// Open opens (creating if needed) the database at path and applies any
// pending migrations.
func Open(path string) (*FeatureDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feature database: %w", err)
	}
	fdb := &FeatureDB{db}
	if err := fdb.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return fdb, nil
}

// InsertDatapoints stores a batch of datapoints, each sample serialized
// channel-major as JSON.
func (db *FeatureDB) InsertDatapoints(points []dataset.Datapoint) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO datapoints (label, channels, sample) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range points {
		sample, err := json.Marshal(p.Sample)
		if err != nil {
			return fmt.Errorf("datapoint %d: %w", i, err)
		}
		if _, err := stmt.Exec(p.Label, len(p.Sample), string(sample)); err != nil {
			return fmt.Errorf("datapoint %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// ListDatapoints loads every stored datapoint in insertion order.
func (db *FeatureDB) ListDatapoints() ([]dataset.Datapoint, error) {
	rows, err := db.Query(`SELECT label, sample FROM datapoints ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query datapoints: %w", err)
	}
	defer rows.Close()

	var points []dataset.Datapoint
	for rows.Next() {
		var label, sampleJSON string
		if err := rows.Scan(&label, &sampleJSON); err != nil {
			return nil, fmt.Errorf("failed to scan datapoint: %w", err)
		}
		var sample signal.Sample
		if err := json.Unmarshal([]byte(sampleJSON), &sample); err != nil {
			return nil, fmt.Errorf("failed to decode sample: %w", err)
		}
		points = append(points, dataset.Datapoint{Label: label, Sample: sample})
	}
	return points, rows.Err()
}

// ExtractionRun describes one persisted feature extraction: which pipeline
// produced it and the resulting matrix dimensions.
type ExtractionRun struct {
	RunID      string
	CreatedAt  time.Time
	Pipeline   []string
	FeatureDim int
	Rows       int
}

// RecordRun stores a feature matrix with its label vector under a fresh
// run ID and returns the ID.
func (db *FeatureDB) RecordRun(pipeline []string, features [][]float64, labels []string) (string, error) {
	if len(features) != len(labels) {
		return "", fmt.Errorf("featuredb: %d feature rows, %d labels", len(features), len(labels))
	}
	runID := uuid.NewString()

	dim := 0
	if len(features) > 0 {
		dim = len(features[0])
	}
	pipelineJSON, err := json.Marshal(pipeline)
	if err != nil {
		return "", fmt.Errorf("failed to encode pipeline: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO extraction_runs (run_id, pipeline, feature_dim) VALUES (?, ?, ?)`,
		runID, string(pipelineJSON), dim,
	); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO run_features (run_id, ord, label, features) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range features {
		rowJSON, err := json.Marshal(row)
		if err != nil {
			return "", fmt.Errorf("row %d: %w", i, err)
		}
		if _, err := stmt.Exec(runID, i, labels[i], string(rowJSON)); err != nil {
			return "", fmt.Errorf("row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// LoadRun retrieves a persisted feature matrix and label vector in the
// original row order.
func (db *FeatureDB) LoadRun(runID string) ([][]float64, []string, error) {
	rows, err := db.Query(
		`SELECT label, features FROM run_features WHERE run_id = ? ORDER BY ord`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query run %s: %w", runID, err)
	}
	defer rows.Close()

	var features [][]float64
	var labels []string
	for rows.Next() {
		var label, rowJSON string
		if err := rows.Scan(&label, &rowJSON); err != nil {
			return nil, nil, fmt.Errorf("failed to scan feature row: %w", err)
		}
		var row []float64
		if err := json.Unmarshal([]byte(rowJSON), &row); err != nil {
			return nil, nil, fmt.Errorf("failed to decode feature row: %w", err)
		}
		features = append(features, row)
		labels = append(labels, label)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if len(features) == 0 {
		return nil, nil, fmt.Errorf("featuredb: no run %s", runID)
	}
	return features, labels, nil
}

// ListRuns returns run metadata, newest first.
func (db *FeatureDB) ListRuns() ([]ExtractionRun, error) {
	rows, err := db.Query(`
		SELECT r.run_id, r.created_at, r.pipeline, r.feature_dim, COUNT(f.ord)
		FROM extraction_runs r
		LEFT JOIN run_features f ON f.run_id = r.run_id
		GROUP BY r.run_id
		ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []ExtractionRun
	for rows.Next() {
		var run ExtractionRun
		var createdAt string
		var pipelineJSON string
		if err := rows.Scan(&run.RunID, &createdAt, &pipelineJSON, &run.FeatureDim, &run.Rows); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			run.CreatedAt = t
		}
		if err := json.Unmarshal([]byte(pipelineJSON), &run.Pipeline); err != nil {
			return nil, fmt.Errorf("failed to decode pipeline: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
