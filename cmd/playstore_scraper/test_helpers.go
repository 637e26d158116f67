package main

import (
	"os"
	"path/filepath"
	"testing"
)

// getBinaryPath returns the path to the playstore_scraper binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "playstore_scraper"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/playstore_scraper ./cmd/playstore_scraper'", binaryPath)
	}

	return binaryPath
}
