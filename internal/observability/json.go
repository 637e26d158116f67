package observability

import (
	"encoding/json"
	"io"
	"log"

	"github.com/jonathan/playstore-scraper/internal/pipeline"
)

// Event types written by JSONReporter.
const (
	TypeStart   = "start"
	TypeItem    = "item"
	TypeSummary = "summary"
)

// JSONReporter writes one JSON object per line for each run event.
type JSONReporter struct {
	enc *json.Encoder
}

// NewJSONReporter creates a JSONReporter writing to out.
func NewJSONReporter(out io.Writer) *JSONReporter {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	return &JSONReporter{enc: enc}
}

type startLine struct {
	Type string `json:"type"`
	pipeline.RunInfo
}

type itemLine struct {
	Type string `json:"type"`
	pipeline.Event
}

type summaryLine struct {
	Type string `json:"type"`
	pipeline.Summary
	DurationMS int64 `json:"duration_ms"`
}

// Start implements pipeline.Reporter.
func (r *JSONReporter) Start(info pipeline.RunInfo) {
	r.emit(startLine{Type: TypeStart, RunInfo: info})
}

// Item implements pipeline.Reporter.
func (r *JSONReporter) Item(event pipeline.Event) {
	r.emit(itemLine{Type: TypeItem, Event: event})
}

// Finish implements pipeline.Reporter.
func (r *JSONReporter) Finish(summary pipeline.Summary) {
	r.emit(summaryLine{Type: TypeSummary, Summary: summary, DurationMS: summary.Duration().Milliseconds()})
}

func (r *JSONReporter) emit(v any) {
	if err := r.enc.Encode(v); err != nil {
		log.Printf("[EVENTS] failed to write event: %v", err)
	}
}
