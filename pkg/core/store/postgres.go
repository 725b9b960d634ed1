package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PostgresWriter stores runs in model_runs and their tables as JSONB in
// model_tables. Writing a label twice for the same run replaces it.
type PostgresWriter struct {
	db *DB
}

// NewPostgresWriter creates a writer on db.
func NewPostgresWriter(db *DB) *PostgresWriter {
	return &PostgresWriter{db: db}
}

// WriteTable implements TableWriter.
func (w *PostgresWriter) WriteTable(ctx context.Context, run Run, label string, t Table) error {
	if w.db == nil || w.db.Pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}
	columns, err := json.Marshal(t.Columns)
	if err != nil {
		return fmt.Errorf("failed to marshal columns: %w", err)
	}
	rows, err := json.Marshal(t.Strings())
	if err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}

	return pgx.BeginFunc(ctx, w.db.Pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO model_runs (id, name, created_at, summary)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id)
			DO UPDATE SET summary = EXCLUDED.summary;
		`, run.ID, run.Name, run.CreatedAt, summary)
		if err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO model_tables (run_id, label, columns, rows)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (run_id, label)
			DO UPDATE SET columns = EXCLUDED.columns, rows = EXCLUDED.rows;
		`, run.ID, label, columns, rows)
		if err != nil {
			return fmt.Errorf("failed to save table %s: %w", label, err)
		}
		return nil
	})
}

// LoadTable reads a stored table back.
func (w *PostgresWriter) LoadTable(ctx context.Context, runID uuid.UUID, label string) (*Table, [][]string, error) {
	if w.db == nil || w.db.Pool == nil {
		return nil, nil, fmt.Errorf("database pool not initialized")
	}

	var columns, rows []byte
	err := w.db.Pool.QueryRow(ctx,
		`SELECT columns, rows FROM model_tables WHERE run_id = $1 AND label = $2`,
		runID, label).Scan(&columns, &rows)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, fmt.Errorf("no table %s for run %s", label, runID)
		}
		return nil, nil, fmt.Errorf("failed to load table: %w", err)
	}

	t := &Table{Name: label}
	if err := json.Unmarshal(columns, &t.Columns); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal columns: %w", err)
	}
	var cells [][]string
	if err := json.Unmarshal(rows, &cells); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal rows: %w", err)
	}
	return t, cells, nil
}
