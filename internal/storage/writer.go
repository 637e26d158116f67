package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/playstore-scraper/internal/types"
)

// Extension is appended to output identifiers to form file names.
const Extension = ".json"

// Writer persists one record under an output identifier.
type Writer interface {
	Write(ctx context.Context, record types.CatalogRecord, outputID string) error
}

// FileWriter writes each record to <Dir>/<outputID>.json, overwriting any
// existing file.
type FileWriter struct {
	dir string
}

// NewFileWriter creates a writer for dir. The directory is created on first write.
func NewFileWriter(dir string) *FileWriter {
	return &FileWriter{dir: dir}
}

// Dir returns the output directory.
func (w *FileWriter) Dir() string {
	return w.dir
}

// Path returns the file a record with outputID is written to.
func (w *FileWriter) Path(outputID string) string {
	return filepath.Join(w.dir, outputID+Extension)
}

// EnsureDir creates the output directory if it does not exist.
// It is checked on every write, so a directory removed mid-run is recreated.
func (w *FileWriter) EnsureDir() error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return &WriteError{Path: w.dir, Message: "failed to create output directory", Cause: err}
	}
	return nil
}

// Write implements Writer.
func (w *FileWriter) Write(_ context.Context, record types.CatalogRecord, outputID string) error {
	if outputID == "" || strings.ContainsAny(outputID, `/\`) {
		return &WriteError{OutputID: outputID, Message: "invalid output identifier"}
	}

	data, err := Encode(record)
	if err != nil {
		return &WriteError{OutputID: outputID, Message: "failed to serialize record", Cause: err}
	}

	if err := w.EnsureDir(); err != nil {
		return err
	}

	path := w.Path(outputID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &WriteError{OutputID: outputID, Path: path, Message: "failed to write file", Cause: err}
	}
	return nil
}

// Save writes record and reports whether it succeeded.
func (w *FileWriter) Save(record types.CatalogRecord, outputID string) bool {
	return w.Write(context.Background(), record, outputID) == nil
}

// Encode renders record as indented JSON with a trailing newline.
// HTML characters and non-ASCII text are written verbatim.
func Encode(record types.CatalogRecord) ([]byte, error) {
	coerced, err := Coerce(map[string]any(record))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(coerced); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Chain writes to each writer in order and stops at the first failure.
type Chain []Writer

// Write implements Writer.
func (c Chain) Write(ctx context.Context, record types.CatalogRecord, outputID string) error {
	for _, w := range c {
		if err := w.Write(ctx, record, outputID); err != nil {
			return err
		}
	}
	return nil
}
