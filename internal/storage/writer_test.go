package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/playstore-scraper/internal/types"
)

func TestFileWriter_WritesRecord(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "api", "appPlaystoreDetail")
	w := NewFileWriter(dir)

	record := types.CatalogRecord{"title": "Example", "score": 4.5}
	require.NoError(t, w.Write(context.Background(), record, "42"))

	data, err := os.ReadFile(filepath.Join(dir, "42.json"))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"score\": 4.5,\n  \"title\": \"Example\"\n}\n", string(data))
}

func TestFileWriter_CreatesDirectoryIdempotently(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.MkdirAll(dir, 0755))

	w := NewFileWriter(dir)
	require.NoError(t, w.EnsureDir())
	require.NoError(t, w.EnsureDir())
	require.NoError(t, w.Write(context.Background(), types.CatalogRecord{"a": 1}, "1"))
	assert.FileExists(t, w.Path("1"))
}

func TestFileWriter_RecreatesRemovedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := NewFileWriter(dir)
	ctx := context.Background()

	require.NoError(t, w.Write(ctx, types.CatalogRecord{"a": 1}, "1"))
	require.NoError(t, os.RemoveAll(dir))

	require.NoError(t, w.Write(ctx, types.CatalogRecord{"a": 2}, "2"))
	assert.FileExists(t, w.Path("2"))
	assert.NoFileExists(t, w.Path("1"))
}

func TestFileWriter_CycleFailsWithoutFile(t *testing.T) {
	w := NewFileWriter(t.TempDir())
	record := types.CatalogRecord{"title": "x"}
	record["self"] = map[string]any(record)

	err := w.Write(context.Background(), record, "4")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCycle)
	assert.NoFileExists(t, w.Path("4"))
	assert.False(t, w.Save(record, "4"))
}

func TestFileWriter_OverwritesExistingFile(t *testing.T) {
	w := NewFileWriter(t.TempDir())
	ctx := context.Background()

	require.NoError(t, w.Write(ctx, types.CatalogRecord{"title": "Old", "extra": true}, "7"))
	require.NoError(t, w.Write(ctx, types.CatalogRecord{"title": "New"}, "7"))

	data, err := os.ReadFile(w.Path("7"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"title": "New"}`, string(data))
}

func TestFileWriter_RepeatedWritesAreByteIdentical(t *testing.T) {
	w := NewFileWriter(t.TempDir())
	record := types.CatalogRecord{
		"title":  "Example",
		"nested": map[string]any{"z": 1.0, "a": []any{"x", map[string]any{"k": "v"}}},
		"tags":   []string{"b", "a"},
	}

	require.NoError(t, w.Write(context.Background(), record, "42"))
	first, err := os.ReadFile(w.Path("42"))
	require.NoError(t, err)

	require.NoError(t, w.Write(context.Background(), record, "42"))
	second, err := os.ReadFile(w.Path("42"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFileWriter_KeepsHTMLAndUnicode(t *testing.T) {
	w := NewFileWriter(t.TempDir())
	record := types.CatalogRecord{"descriptionHTML": "<b>Café</b> & más"}

	require.NoError(t, w.Write(context.Background(), record, "1"))

	data, err := os.ReadFile(w.Path("1"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<b>Café</b> & más")
}

func TestFileWriter_DirectoryIsAFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	w := NewFileWriter(filepath.Join(blocker, "out"))
	err := w.Write(context.Background(), types.CatalogRecord{"title": "x"}, "1")
	require.Error(t, err)

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Contains(t, err.Error(), "failed to create output directory")
	assert.False(t, w.Save(types.CatalogRecord{"title": "x"}, "1"))
}

func TestFileWriter_TargetIsADirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "9.json"), 0755))

	w := NewFileWriter(dir)
	err := w.Write(context.Background(), types.CatalogRecord{"title": "x"}, "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write file")
}

func TestFileWriter_InvalidOutputID(t *testing.T) {
	w := NewFileWriter(t.TempDir())
	for _, id := range []string{"", "../escape", `a\b`} {
		err := w.Write(context.Background(), types.CatalogRecord{"title": "x"}, id)
		assert.Error(t, err, id)
	}
}

func TestFileWriter_CoercionFailureLeavesNoFile(t *testing.T) {
	w := NewFileWriter(t.TempDir())
	record := types.CatalogRecord{"bad": panicStringer{}}

	assert.False(t, w.Save(record, "3"))
	assert.NoFileExists(t, w.Path("3"))
}

func TestFileWriter_Save(t *testing.T) {
	w := NewFileWriter(t.TempDir())
	assert.True(t, w.Save(types.CatalogRecord{"title": "ok"}, "5"))
	assert.FileExists(t, w.Path("5"))
}

func TestEncode_CoercesUnsupportedValues(t *testing.T) {
	data, err := Encode(types.CatalogRecord{"c": complex(1, 2)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"c": "(1+2i)"}`, string(data))
}

type recordingWriter struct {
	calls []string
	err   error
}

func (r *recordingWriter) Write(_ context.Context, _ types.CatalogRecord, outputID string) error {
	r.calls = append(r.calls, outputID)
	return r.err
}

func TestChain_StopsAtFirstFailure(t *testing.T) {
	first := &recordingWriter{}
	failing := &recordingWriter{err: errors.New("disk full")}
	last := &recordingWriter{}

	err := Chain{first, failing, last}.Write(context.Background(), types.CatalogRecord{}, "1")
	require.Error(t, err)
	assert.Equal(t, []string{"1"}, first.calls)
	assert.Equal(t, []string{"1"}, failing.calls)
	assert.Empty(t, last.calls)
}

func TestChain_AllSucceed(t *testing.T) {
	a, b := &recordingWriter{}, &recordingWriter{}
	require.NoError(t, Chain{a, b}.Write(context.Background(), types.CatalogRecord{}, "2"))
	assert.Equal(t, []string{"2"}, a.calls)
	assert.Equal(t, []string{"2"}, b.calls)
}
