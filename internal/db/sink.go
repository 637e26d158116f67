package db

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/jonathan/playstore-scraper/internal/pipeline"
	"github.com/jonathan/playstore-scraper/internal/storage"
	"github.com/jonathan/playstore-scraper/internal/types"
)

// RecordStore is the subset of DB used by RecordWriter and RunTracker.
type RecordStore interface {
	UpsertCatalogRecord(ctx context.Context, row *CatalogRecordRow) error
	CreateRun(ctx context.Context, run *ScrapeRun) error
	CompleteRun(ctx context.Context, runID uuid.UUID, successful, failed int) error
}

// RecordWriter upserts each record into catalog_records, keyed by output ID.
type RecordWriter struct {
	store RecordStore
	runID uuid.UUID
}

// NewRecordWriter creates a writer that tags rows with runID.
func NewRecordWriter(store RecordStore, runID uuid.UUID) *RecordWriter {
	return &RecordWriter{store: store, runID: runID}
}

// Write stores record under outputID. The content is the same JSON that the file writer produces.
func (w *RecordWriter) Write(ctx context.Context, record types.CatalogRecord, outputID string) error {
	content, err := storage.Encode(record)
	if err != nil {
		return &storage.WriteError{OutputID: outputID, Message: "failed to serialize record", Cause: err}
	}

	row := &CatalogRecordRow{
		OutputID: outputID,
		AppID:    record.AppID(),
		Content:  content,
	}
	if w.runID != uuid.Nil {
		runID := w.runID
		row.RunID = &runID
	}
	if title := record.Title(); title != "" {
		row.Title = &title
	}

	if err := w.store.UpsertCatalogRecord(ctx, row); err != nil {
		return &storage.WriteError{OutputID: outputID, Message: "failed to store record in database", Cause: err}
	}
	return nil
}

// RunTracker records the start and the counters of a run in scrape_runs.
// Failures are logged and never affect the run.
type RunTracker struct {
	ctx   context.Context
	store RecordStore
}

// NewRunTracker creates a tracker using ctx for its queries.
func NewRunTracker(ctx context.Context, store RecordStore) *RunTracker {
	return &RunTracker{ctx: ctx, store: store}
}

// Start implements pipeline.Reporter.
func (t *RunTracker) Start(info pipeline.RunInfo) {
	err := t.store.CreateRun(t.ctx, &ScrapeRun{
		ID:        info.RunID,
		IDsPath:   info.IDsPath,
		OutputDir: info.OutputDir,
		Total:     info.Total,
	})
	if err != nil {
		log.Printf("[DB] %v", err)
	}
}

// Item implements pipeline.Reporter.
func (t *RunTracker) Item(pipeline.Event) {}

// Finish implements pipeline.Reporter.
func (t *RunTracker) Finish(summary pipeline.Summary) {
	if err := t.store.CompleteRun(t.ctx, summary.RunID, summary.Successful, summary.Failed); err != nil {
		log.Printf("[DB] %v", err)
	}
}
