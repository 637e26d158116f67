// Package types provides type definitions for structured data used throughout the playstore-scraper system.
package types

// AppEntry pairs a catalog key (a Play Store package name) with the identifier
// of the file its record is persisted under.
type AppEntry struct {
	AppID    string `json:"app_id"`
	OutputID string `json:"output_id"`
}

// CatalogRecord is everything the catalog returned for one app.
// It has no fixed schema; values may be strings, numbers, booleans or nested
// maps and slices of the same.
type CatalogRecord map[string]any

// Title returns the record's title field, or "" if absent or not a string.
func (r CatalogRecord) Title() string {
	s, _ := r["title"].(string)
	return s
}

// AppID returns the record's appId field, or "" if absent or not a string.
func (r CatalogRecord) AppID() string {
	s, _ := r["appId"].(string)
	return s
}
