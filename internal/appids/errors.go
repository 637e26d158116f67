package appids

import (
	"errors"
	"fmt"
)

// ErrConfigMissing matches any *ConfigMissingError via errors.Is.
var ErrConfigMissing = errors.New("app ids config missing")

// ErrConfigMalformed matches any *ConfigMalformedError via errors.Is.
var ErrConfigMalformed = errors.New("app ids config malformed")

// ConfigMissingError is returned when the ids document does not exist.
type ConfigMissingError struct {
	Path  string
	Cause error
}

func (e *ConfigMissingError) Error() string {
	return fmt.Sprintf("app ids config not found: %s", e.Path)
}

func (e *ConfigMissingError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrConfigMissing.
func (e *ConfigMissingError) Is(target error) bool {
	return target == ErrConfigMissing
}

// ConfigMalformedError is returned when the ids document exists but is not
// a mapping of catalog keys to output identifiers.
type ConfigMalformedError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ConfigMalformedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid app ids config %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid app ids config %s: %s", e.Path, e.Message)
}

func (e *ConfigMalformedError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrConfigMalformed.
func (e *ConfigMalformedError) Is(target error) bool {
	return target == ErrConfigMalformed
}
