package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/playstore-scraper/internal/pipeline"
	"github.com/jonathan/playstore-scraper/internal/types"
)

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	start := time.Now()
	p.PrintSummary(&pipeline.Summary{
		Total:      3,
		Successful: 2,
		Failed:     1,
		OutputDir:  "api/appPlaystoreDetail",
		FailedEntries: []types.AppEntry{
			{AppID: "com.missing.app", OutputID: "7"},
		},
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
	})
	output := buf.String()

	assert.Contains(t, output, "SCRAPING SUMMARY")
	assert.Contains(t, output, "Successful: 2")
	assert.Contains(t, output, "Failed: 1")
	assert.Contains(t, output, "api/appPlaystoreDetail")
	assert.Contains(t, output, "1.5s")
	assert.Contains(t, output, "com.missing.app (ID: 7)")
}

func TestPrintSummary_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSummary(nil)

	assert.Empty(t, buf.String())
}

func TestPrintSummary_TruncatesFailedList(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	var failed []types.AppEntry
	for i := 0; i < 8; i++ {
		failed = append(failed, types.AppEntry{AppID: fmt.Sprintf("com.app%d", i), OutputID: fmt.Sprint(i)})
	}
	p.PrintSummary(&pipeline.Summary{Failed: 8, Total: 8, FailedEntries: failed})
	output := buf.String()

	assert.Contains(t, output, "com.app4")
	assert.NotContains(t, output, "com.app5")
	assert.Contains(t, output, "... and 3 more")
}

func TestPrintIDsReport_NoCollisions(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintIDsReport("api/otherApps.json", 4, nil)
	output := buf.String()

	assert.Contains(t, output, "APP IDS")
	assert.Contains(t, output, "Entries:  4")
	assert.Contains(t, output, "No output ID collisions")
}

func TestPrintIDsReport_Collisions(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintIDsReport("ids.json", 3, map[string][]string{"1": {"com.a", "com.b"}})
	output := buf.String()

	assert.Contains(t, output, "1 output IDs shared")
	assert.Contains(t, output, "1: com.a, com.b")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 200))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), line)
	}
	assert.Contains(t, buf.String(), "...")
}
