package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/playstore-scraper/internal/catalog"
	"github.com/jonathan/playstore-scraper/internal/pipeline"
)

// ConsoleReporter prints a human-readable progress line per item and a boxed summary.
type ConsoleReporter struct {
	out     io.Writer
	printer *Printer
}

// NewConsoleReporter creates a ConsoleReporter writing to out.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out, printer: NewPrinter(out)}
}

// Start implements pipeline.Reporter.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (r *ConsoleReporter) Start(info pipeline.RunInfo) {
	fmt.Fprintln(r.out, strings.Repeat("=", boxWidth))
	fmt.Fprintln(r.out, "Play Store Scraper")
	fmt.Fprintln(r.out, strings.Repeat("=", boxWidth))
	fmt.Fprintf(r.out, "Output directory: %s\n", info.OutputDir)
	fmt.Fprintf(r.out, "\nFound %d apps to scrape\n", info.Total)
}

// Item implements pipeline.Reporter.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (r *ConsoleReporter) Item(event pipeline.Event) {
	fmt.Fprintf(r.out, "\n[%d/%d] Scraping %s (ID: %s)...\n", event.Index, event.Total, event.AppID, event.OutputID)
	fmt.Fprintf(r.out, "  %s\n", describe(event))
}

// Finish implements pipeline.Reporter.
func (r *ConsoleReporter) Finish(summary pipeline.Summary) {
	_, _ = fmt.Fprintln(r.out)
	r.printer.PrintSummary(&summary)
}

func describe(event pipeline.Event) string {
	attempts := ""
	if event.Attempts > 1 {
		attempts = fmt.Sprintf(" after %d attempts", event.Attempts)
	}

	switch event.Status {
	case pipeline.StatusDone:
		return fmt.Sprintf("✅ Saved to %s%s", event.Location, attempts)
	case pipeline.StatusWriteFailed:
		return fmt.Sprintf("⚠️  Error saving ID %s: %s", event.OutputID, event.Detail)
	}

	switch catalog.Kind(event.Reason) {
	case catalog.KindNotFound:
		return fmt.Sprintf("⚠️  App %s not found on Play Store", event.AppID)
	case catalog.KindTransient:
		return fmt.Sprintf("⚠️  Network error for %s%s: %s", event.AppID, attempts, event.Detail)
	default:
		return fmt.Sprintf("⚠️  Error scraping %s: %s", event.AppID, event.Detail)
	}
}
