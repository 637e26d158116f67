// Package appids loads the mapping of Play Store package names to output file identifiers.
package appids

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/samber/lo"

	"github.com/jonathan/playstore-scraper/internal/schemas"
	"github.com/jonathan/playstore-scraper/internal/types"
	rootschemas "github.com/jonathan/playstore-scraper/schemas"
)

// Document is the on-disk shape of the ids file.
type Document struct {
	IDs map[string]string `json:"ids"`
}

// Load reads the ids document at path and returns its catalog key → output ID mapping.
// A document without an "ids" field yields an empty mapping.
func Load(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigMissingError{Path: path, Cause: err}
		}
		return nil, &ConfigMalformedError{Path: path, Message: "failed to read file", Cause: err}
	}

	return Parse(path, data)
}

// Parse decodes and validates an ids document. path is only used in errors.
func Parse(path string, data []byte) (map[string]string, error) {
	// Syntax first so parse failures are not reported as schema problems
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigMalformedError{Path: path, Message: "invalid JSON", Cause: err}
	}

	if err := schemas.ValidateBytes(rootschemas.AppIDsName, rootschemas.AppIDs, data); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			return nil, &ConfigMalformedError{Path: path, Message: validationErr.Summary()}
		}
		return nil, &ConfigMalformedError{Path: path, Message: "schema check failed", Cause: err}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigMalformedError{Path: path, Message: "unexpected ids shape", Cause: err}
	}
	if doc.IDs == nil {
		return map[string]string{}, nil
	}
	return doc.IDs, nil
}

// Save writes ids as an ids document, overwriting any existing file.
func Save(path string, ids map[string]string) error {
	if ids == nil {
		ids = map[string]string{}
	}
	data, err := json.MarshalIndent(Document{IDs: ids}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ids: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write ids file %s: %w", path, err)
	}
	return nil
}

// Entries returns the mapping as a slice ordered by catalog key.
func Entries(ids map[string]string) []types.AppEntry {
	keys := lo.Keys(ids)
	slices.Sort(keys)

	entries := make([]types.AppEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, types.AppEntry{AppID: key, OutputID: ids[key]})
	}
	return entries
}

// Filter returns the entries of ids whose catalog key is in keys.
// Keys absent from ids are returned separately.
func Filter(ids map[string]string, keys []string) (map[string]string, []string) {
	filtered := lo.PickByKeys(ids, keys)
	unknown := lo.Uniq(lo.Reject(keys, func(key string, _ int) bool {
		_, ok := ids[key]
		return ok
	}))
	return filtered, unknown
}

// Collisions returns output IDs that more than one catalog key writes to,
// each with its sorted catalog keys. Their files are overwritten by whichever
// key is processed last.
func Collisions(ids map[string]string) map[string][]string {
	byOutput := lo.GroupBy(lo.Keys(ids), func(key string) string {
		return ids[key]
	})

	collisions := lo.PickBy(byOutput, func(_ string, keys []string) bool {
		return len(keys) > 1
	})
	for _, keys := range collisions {
		slices.Sort(keys)
	}
	return collisions
}
