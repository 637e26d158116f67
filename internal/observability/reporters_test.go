package observability

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/playstore-scraper/internal/catalog"
	"github.com/jonathan/playstore-scraper/internal/pipeline"
)

func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.Start(pipeline.RunInfo{Total: 2, OutputDir: "out"})
	r.Item(pipeline.Event{
		Index: 1, Total: 2, AppID: "com.example.app", OutputID: "42",
		Status: pipeline.StatusDone, Reason: pipeline.ReasonSuccess, Location: "out/42.json", Attempts: 1,
	})
	r.Item(pipeline.Event{
		Index: 2, Total: 2, AppID: "com.missing.app", OutputID: "7",
		Status: pipeline.StatusFetchFailed, Reason: string(catalog.KindNotFound), Attempts: 1,
	})
	r.Finish(pipeline.Summary{Total: 2, Successful: 1, Failed: 1, OutputDir: "out"})
	output := buf.String()

	assert.Contains(t, output, "Play Store Scraper")
	assert.Contains(t, output, "Found 2 apps to scrape")
	assert.Contains(t, output, "[1/2] Scraping com.example.app (ID: 42)...")
	assert.Contains(t, output, "✅ Saved to out/42.json")
	assert.Contains(t, output, "App com.missing.app not found on Play Store")
	assert.Contains(t, output, "SCRAPING SUMMARY")
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name  string
		event pipeline.Event
		want  string
	}{
		{
			name:  "retried success",
			event: pipeline.Event{Status: pipeline.StatusDone, Location: "out/1.json", Attempts: 3},
			want:  "✅ Saved to out/1.json after 3 attempts",
		},
		{
			name:  "write failure",
			event: pipeline.Event{Status: pipeline.StatusWriteFailed, OutputID: "1", Detail: "disk full"},
			want:  "⚠️  Error saving ID 1: disk full",
		},
		{
			name:  "transient",
			event: pipeline.Event{Status: pipeline.StatusFetchFailed, AppID: "com.a", Reason: string(catalog.KindTransient), Detail: "timeout", Attempts: 1},
			want:  "⚠️  Network error for com.a: timeout",
		},
		{
			name:  "unexpected",
			event: pipeline.Event{Status: pipeline.StatusFetchFailed, AppID: "com.a", Reason: string(catalog.KindUnexpected), Detail: "no title"},
			want:  "⚠️  Error scraping com.a: no title",
		},
		{
			name:  "panic",
			event: pipeline.Event{Status: pipeline.StatusFetchFailed, AppID: "com.a", Reason: pipeline.ReasonPanic, Detail: "boom"},
			want:  "⚠️  Error scraping com.a: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.event))
		})
	}
}

func TestJSONReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporter(&buf)
	runID := uuid.New()
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	r.Start(pipeline.RunInfo{RunID: runID, Total: 1, IDsPath: "ids.json", OutputDir: "out"})
	r.Item(pipeline.Event{RunID: runID, Index: 1, Total: 1, AppID: "com.a", OutputID: "1", Status: pipeline.StatusDone, Location: "out/1.json"})
	r.Finish(pipeline.Summary{RunID: runID, Total: 1, Successful: 1, StartedAt: start, FinishedAt: start.Add(2 * time.Second)})

	var lines []map[string]any
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.Len(t, lines, 3)

	assert.Equal(t, TypeStart, lines[0]["type"])
	assert.Equal(t, runID.String(), lines[0]["run_id"])
	assert.Equal(t, "ids.json", lines[0]["ids_path"])

	assert.Equal(t, TypeItem, lines[1]["type"])
	assert.Equal(t, "com.a", lines[1]["app_id"])
	assert.Equal(t, "done", lines[1]["status"])
	assert.Equal(t, "out/1.json", lines[1]["location"])

	assert.Equal(t, TypeSummary, lines[2]["type"])
	assert.Equal(t, float64(1), lines[2]["successful"])
	assert.Equal(t, float64(2000), lines[2]["duration_ms"])
}
