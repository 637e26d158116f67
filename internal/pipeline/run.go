// Package pipeline runs one pass over the app identifiers: fetch each record,
// write it, and count the outcomes.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/playstore-scraper/internal/appids"
	"github.com/jonathan/playstore-scraper/internal/catalog"
	"github.com/jonathan/playstore-scraper/internal/types"
)

// RecordWriter persists a fetched record under its output identifier.
type RecordWriter interface {
	Write(ctx context.Context, record types.CatalogRecord, outputID string) error
}

// LoadFunc loads the catalog key → output ID mapping.
type LoadFunc func(path string) (map[string]string, error)

// Options holds everything a run needs. IDsPath, Fetcher and Writer are required.
type Options struct {
	RunID     uuid.UUID
	IDsPath   string
	OutputDir string
	// Only restricts the run to these catalog keys when non-empty.
	Only     []string
	Fetcher  catalog.Fetcher
	Writer   RecordWriter
	Reporter Reporter
	Retry    RetryPolicy
	// Locate maps an output ID to where its record ends up, for progress output.
	Locate  func(outputID string) string
	Load    LoadFunc
	Verbose bool
}

// FilterError reports --only keys missing from the ids document.
type FilterError struct {
	Unknown []string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("unknown app ids in filter: %s", strings.Join(e.Unknown, ", "))
}

// Orchestrator drives a single run. It is not safe for concurrent use.
type Orchestrator struct {
	runID     uuid.UUID
	idsPath   string
	outputDir string
	only      []string
	fetcher   catalog.Fetcher
	writer    RecordWriter
	reporter  Reporter
	retry     RetryPolicy
	locate    func(string) string
	load      LoadFunc
	verbose   bool
}

// New validates opts and creates an Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.IDsPath == "" {
		return nil, errors.New("ids path is required")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if opts.Writer == nil {
		return nil, errors.New("writer is required")
	}
	if opts.Retry.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries must be non-negative, got %d", opts.Retry.MaxRetries)
	}

	o := &Orchestrator{
		runID:     opts.RunID,
		idsPath:   opts.IDsPath,
		outputDir: opts.OutputDir,
		only:      opts.Only,
		fetcher:   opts.Fetcher,
		writer:    opts.Writer,
		reporter:  opts.Reporter,
		retry:     opts.Retry,
		locate:    opts.Locate,
		load:      opts.Load,
		verbose:   opts.Verbose,
	}
	if o.runID == uuid.Nil {
		o.runID = uuid.New()
	}
	if o.reporter == nil {
		o.reporter = NopReporter{}
	}
	if o.load == nil {
		o.load = appids.Load
	}
	return o, nil
}

// RunID returns the identifier of the run.
func (o *Orchestrator) RunID() uuid.UUID {
	return o.runID
}

// Run loads the identifiers and processes each of them once, in catalog key order.
// It returns an error only if the identifiers cannot be loaded, in which case
// nothing has been fetched. Item failures are counted in the summary.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	ids, err := o.load(o.idsPath)
	if err != nil {
		return nil, err
	}
	if len(o.only) > 0 {
		filtered, unknown := appids.Filter(ids, o.only)
		if len(unknown) > 0 {
			return nil, &FilterError{Unknown: unknown}
		}
		ids = filtered
	}
	entries := appids.Entries(ids)

	summary := &Summary{
		RunID:     o.runID,
		Total:     len(entries),
		OutputDir: o.outputDir,
		StartedAt: time.Now(),
	}
	o.reporter.Start(RunInfo{
		RunID:     o.runID,
		Total:     len(entries),
		IDsPath:   o.idsPath,
		OutputDir: o.outputDir,
	})

	for i, entry := range entries {
		event := o.process(ctx, entry)
		event.Index = i + 1
		event.Total = len(entries)

		if event.Failed() {
			summary.Failed++
			summary.FailedEntries = append(summary.FailedEntries, entry)
		} else {
			summary.Successful++
		}
		o.reporter.Item(event)
	}

	summary.FinishedAt = time.Now()
	o.reporter.Finish(*summary)
	return summary, nil
}

// process takes one entry from PENDING to DONE, FETCH_FAILED or WRITE_FAILED.
func (o *Orchestrator) process(ctx context.Context, entry types.AppEntry) (event Event) {
	start := time.Now()
	event = Event{
		RunID:    o.runID,
		AppID:    entry.AppID,
		OutputID: entry.OutputID,
	}
	defer func() {
		if r := recover(); r != nil {
			event.Status = StatusFetchFailed
			if event.Attempts > 0 && event.Reason == ReasonSuccess {
				event.Status = StatusWriteFailed
			}
			event.Reason = ReasonPanic
			event.Detail = fmt.Sprintf("panic while processing %s: %v", entry.AppID, r)
		}
		event.Duration = time.Since(start)
	}()

	outcome, attempts := o.fetch(ctx, entry.AppID)
	event.Attempts = attempts
	event.Reason = string(outcome.Kind)
	if !outcome.OK() {
		event.Status = StatusFetchFailed
		event.Detail = outcome.Detail
		return event
	}

	if err := o.writer.Write(ctx, outcome.Record, entry.OutputID); err != nil {
		event.Status = StatusWriteFailed
		event.Reason = ReasonWriteError
		event.Detail = err.Error()
		return event
	}

	event.Status = StatusDone
	event.Reason = ReasonSuccess
	if o.locate != nil {
		event.Location = o.locate(entry.OutputID)
	}
	return event
}
