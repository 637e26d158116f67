// Package storage persists catalog records, one JSON file per output identifier.
package storage

import "fmt"

// WriteError represents a failure to persist one record.
type WriteError struct {
	OutputID string
	Path     string
	Message  string
	Cause    error
}

func (e *WriteError) Error() string {
	target := e.OutputID
	if e.Path != "" {
		target = e.Path
	}
	if e.Cause != nil {
		return fmt.Sprintf("write error for %s: %s: %v", target, e.Message, e.Cause)
	}
	return fmt.Sprintf("write error for %s: %s", target, e.Message)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}
