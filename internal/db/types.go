package db

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses stored in scrape_runs.status
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
)

// ScrapeRun represents a row of scrape_runs
type ScrapeRun struct {
	ID          uuid.UUID  `json:"id"`
	IDsPath     string     `json:"ids_path"`
	OutputDir   string     `json:"output_dir"`
	Status      string     `json:"status"`
	Total       int        `json:"total"`
	Successful  int        `json:"successful"`
	Failed      int        `json:"failed"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CatalogRecordRow represents a row of catalog_records
type CatalogRecordRow struct {
	OutputID  string     `json:"output_id"`
	AppID     string     `json:"app_id"`
	RunID     *uuid.UUID `json:"run_id,omitempty"`
	Title     *string    `json:"title,omitempty"`
	Content   []byte     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
