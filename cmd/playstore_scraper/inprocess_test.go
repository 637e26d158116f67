package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/playstore-scraper/internal/appids"
)

// executeRoot runs the root command in-process with args.
func executeRoot(t *testing.T, args ...string) error {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return rootCmd.Execute()
}

func TestScrape_MissingIDsFailsBeforeAnyFetch(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	root := t.TempDir()

	err := executeRoot(t, "scrape", "--root", root, "--base-url", srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appids.ErrConfigMissing))
	assert.Zero(t, requests.Load())

	_, statErr := os.Stat(filepath.Join(root, "api", "appPlaystoreDetail"))
	assert.True(t, os.IsNotExist(statErr), "output directory should not be created")
}

func TestValidateIDs_MalformedReturnsError(t *testing.T) {
	root := t.TempDir()
	writeIDsFile(t, root, `{"ids": {"com.a": 1}}`)

	err := executeRoot(t, "validate-ids", "--root", root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appids.ErrConfigMalformed))
}
