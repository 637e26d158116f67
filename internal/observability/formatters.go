// Package observability provides formatted output for scrape runs.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/playstore-scraper/internal/pipeline"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles boxed output for summaries
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintSummary outputs the counters of a finished run and the first failed entries.
func (p *Printer) PrintSummary(summary *pipeline.Summary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ Successful: %d\n", summary.Successful))
	sb.WriteString(fmt.Sprintf("⚠️  Failed: %d\n", summary.Failed))
	sb.WriteString(fmt.Sprintf("📁 Output directory: %s\n", summary.OutputDir))
	sb.WriteString(fmt.Sprintf("Duration: %s", summary.Duration().Round(time.Millisecond)))

	if len(summary.FailedEntries) > 0 {
		sb.WriteString("\n\nFailed:\n")
		count := min(len(summary.FailedEntries), maxItemsToShow)
		for i := 0; i < count; i++ {
			entry := summary.FailedEntries[i]
			sb.WriteString(fmt.Sprintf("  • %s (ID: %s)\n", entry.AppID, entry.OutputID))
		}
		if len(summary.FailedEntries) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(summary.FailedEntries)-maxItemsToShow))
		}
	}

	p.printBox("SCRAPING SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintIDsReport outputs the result of checking an ids document.
func (p *Printer) PrintIDsReport(path string, total int, collisions map[string][]string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:     %s\n", path))
	sb.WriteString(fmt.Sprintf("Entries:  %d\n", total))

	if len(collisions) == 0 {
		sb.WriteString("\n✅ No output ID collisions")
		p.printBox("APP IDS", sb.String())
		return
	}

	outputIDs := make([]string, 0, len(collisions))
	for id := range collisions {
		outputIDs = append(outputIDs, id)
	}
	sort.Strings(outputIDs)

	sb.WriteString(fmt.Sprintf("\n⚠ %d output IDs shared by several apps:\n", len(collisions)))
	for _, id := range outputIDs {
		sb.WriteString(fmt.Sprintf("  • %s: %s\n", id, strings.Join(collisions[id], ", ")))
	}

	p.printBox("APP IDS", strings.TrimSuffix(sb.String(), "\n"))
}
