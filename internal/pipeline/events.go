package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/playstore-scraper/internal/types"
)

// ItemStatus is the terminal state of one identifier.
type ItemStatus string

const (
	// StatusDone means the record was fetched and written.
	StatusDone ItemStatus = "done"
	// StatusFetchFailed means the fetch did not return a record; nothing was written.
	StatusFetchFailed ItemStatus = "fetch_failed"
	// StatusWriteFailed means the record was fetched but could not be persisted.
	StatusWriteFailed ItemStatus = "write_failed"
)

// Reasons reported alongside a status. Fetch failures use the catalog.Kind values.
const (
	ReasonSuccess    = "success"
	ReasonWriteError = "write_error"
	ReasonPanic      = "panic"
)

// RunInfo describes a run before its first item is processed.
type RunInfo struct {
	RunID     uuid.UUID `json:"run_id"`
	Total     int       `json:"total"`
	IDsPath   string    `json:"ids_path"`
	OutputDir string    `json:"output_dir"`
}

// Event reports the outcome of one identifier.
type Event struct {
	RunID    uuid.UUID     `json:"run_id"`
	Index    int           `json:"index"`
	Total    int           `json:"total"`
	AppID    string        `json:"app_id"`
	OutputID string        `json:"output_id"`
	Status   ItemStatus    `json:"status"`
	Reason   string        `json:"reason"`
	Detail   string        `json:"detail,omitempty"`
	Location string        `json:"location,omitempty"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration_ns"`
}

// Failed reports whether the item counts as failed.
func (e Event) Failed() bool {
	return e.Status != StatusDone
}

// Summary aggregates a finished run.
type Summary struct {
	RunID         uuid.UUID        `json:"run_id"`
	Total         int              `json:"total"`
	Successful    int              `json:"successful"`
	Failed        int              `json:"failed"`
	OutputDir     string           `json:"output_dir"`
	FailedEntries []types.AppEntry `json:"failed_entries,omitempty"`
	StartedAt     time.Time        `json:"started_at"`
	FinishedAt    time.Time        `json:"finished_at"`
}

// Duration returns how long the run took.
func (s Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// FailedIDs returns the failed entries as an ids mapping, ready to be saved
// for a re-run of just those items.
func (s Summary) FailedIDs() map[string]string {
	ids := make(map[string]string, len(s.FailedEntries))
	for _, entry := range s.FailedEntries {
		ids[entry.AppID] = entry.OutputID
	}
	return ids
}

// Reporter receives structured progress from a run. Calls are sequential.
type Reporter interface {
	Start(info RunInfo)
	Item(event Event)
	Finish(summary Summary)
}

// NopReporter discards everything.
type NopReporter struct{}

// Start implements Reporter.
func (NopReporter) Start(RunInfo) {}

// Item implements Reporter.
func (NopReporter) Item(Event) {}

// Finish implements Reporter.
func (NopReporter) Finish(Summary) {}

// Reporters fans out to several reporters in order.
type Reporters []Reporter

// Start implements Reporter.
func (r Reporters) Start(info RunInfo) {
	for _, rep := range r {
		rep.Start(info)
	}
}

// Item implements Reporter.
func (r Reporters) Item(event Event) {
	for _, rep := range r {
		rep.Item(event)
	}
}

// Finish implements Reporter.
func (r Reporters) Finish(summary Summary) {
	for _, rep := range r {
		rep.Finish(summary)
	}
}

// Recorder keeps every event in memory.
type Recorder struct {
	Info    *RunInfo
	Events  []Event
	Summary *Summary
}

// Start implements Reporter.
func (r *Recorder) Start(info RunInfo) {
	r.Info = &info
}

// Item implements Reporter.
func (r *Recorder) Item(event Event) {
	r.Events = append(r.Events, event)
}

// Finish implements Reporter.
func (r *Recorder) Finish(summary Summary) {
	r.Summary = &summary
}
