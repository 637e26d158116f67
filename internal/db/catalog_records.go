package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UpsertCatalogRecord inserts a record or replaces the one stored under the same output ID
func (db *DB) UpsertCatalogRecord(ctx context.Context, row *CatalogRecordRow) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO catalog_records (output_id, app_id, run_id, title, content)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (output_id) DO UPDATE SET
			app_id = EXCLUDED.app_id,
			run_id = EXCLUDED.run_id,
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			updated_at = NOW()`,
		row.OutputID, row.AppID, row.RunID, row.Title, row.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert catalog record %s: %w", row.OutputID, err)
	}
	return nil
}

// GetCatalogRecord retrieves a record by output ID. Returns nil if not found.
func (db *DB) GetCatalogRecord(ctx context.Context, outputID string) (*CatalogRecordRow, error) {
	var row CatalogRecordRow
	err := db.pool.QueryRow(ctx,
		`SELECT output_id, app_id, run_id, title, content, created_at, updated_at
		 FROM catalog_records WHERE output_id = $1`,
		outputID,
	).Scan(&row.OutputID, &row.AppID, &row.RunID, &row.Title, &row.Content, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get catalog record %s: %w", outputID, err)
	}
	return &row, nil
}

// CreateRun records the start of a scrape run
func (db *DB) CreateRun(ctx context.Context, run *ScrapeRun) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO scrape_runs (id, ids_path, output_dir, status, total)
		 VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.IDsPath, run.OutputDir, RunStatusRunning, run.Total,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun stores the final counters of a scrape run
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, successful, failed int) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE scrape_runs
		 SET status = $1, successful = $2, failed = $3, completed_at = NOW()
		 WHERE id = $4`,
		RunStatusCompleted, successful, failed, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun retrieves a scrape run by ID. Returns nil if not found.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*ScrapeRun, error) {
	var run ScrapeRun
	err := db.pool.QueryRow(ctx,
		`SELECT id, ids_path, output_dir, status, total, successful, failed, started_at, completed_at
		 FROM scrape_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.IDsPath, &run.OutputDir, &run.Status, &run.Total,
		&run.Successful, &run.Failed, &run.StartedAt, &run.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}
