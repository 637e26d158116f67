// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/playstore-scraper/internal/catalog"
	"github.com/jonathan/playstore-scraper/internal/fetch"
)

// Default locations, relative to the source root.
const (
	DefaultIDsPath   = "api/otherApps.json"
	DefaultOutputDir = "api/appPlaystoreDetail"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or are provided via CLI flags.
type Config struct {
	// Paths
	Root      string `json:"root,omitempty"`       // Source root that relative paths resolve against
	IDsPath   string `json:"ids_path,omitempty"`   // Path to the ids document
	OutputDir string `json:"output_dir,omitempty"` // Directory receiving <outputID>.json files
	FailedOut string `json:"failed_out,omitempty"` // Where to write failed entries as an ids document

	// Catalog
	Lang           string `json:"lang,omitempty" validate:"omitempty,min=2,max=10"`
	Country        string `json:"country,omitempty" validate:"omitempty,alpha,len=2"`
	BaseURL        string `json:"base_url,omitempty" validate:"omitempty,url"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" validate:"gte=0,lte=600"`
	MaxRetries     int    `json:"max_retries,omitempty" validate:"gte=0,lte=10"`

	// Behavior
	UseBrowser  bool   `json:"use_browser,omitempty"`                        // Render pages with headless Chrome
	DatabaseURL string `json:"database_url,omitempty" validate:"omitempty,url"` // PostgreSQL connection URL
	Verbose     bool   `json:"verbose,omitempty"`                            // Print detailed debug information
	JSONEvents  bool   `json:"json_events,omitempty"`                        // Emit one JSON object per event
}

// Defaults returns the configuration used when nothing else is given.
func Defaults() Config {
	return Config{
		IDsPath:        DefaultIDsPath,
		OutputDir:      DefaultOutputDir,
		Lang:           catalog.DefaultLang,
		Country:        catalog.DefaultCountry,
		BaseURL:        catalog.DefaultBaseURL,
		TimeoutSeconds: int(fetch.DefaultTimeout / time.Second),
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names so messages match the config file
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since defaults are merged afterwards.
func (c *Config) Validate() error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("config error: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		msgs = append(msgs, fmt.Sprintf("'%s' is invalid (%s): %v", fe.Field(), rule, fe.Value()))
	}
	return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Root == "" {
		result.Root = defaults.Root
	}
	if result.IDsPath == "" {
		result.IDsPath = defaults.IDsPath
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.FailedOut == "" {
		result.FailedOut = defaults.FailedOut
	}
	if result.Lang == "" {
		result.Lang = defaults.Lang
	}
	if result.Country == "" {
		result.Country = defaults.Country
	}
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Int fields: use default if zero
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if result.MaxRetries == 0 {
		result.MaxRetries = defaults.MaxRetries
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Resolve returns path joined to Root unless it is absolute or empty.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Root == "" {
		return path
	}
	return filepath.Join(c.Root, path)
}

// DatabaseURLFromEnv returns the first non-empty PLAYSTORE_DATABASE_URL or DATABASE_URL.
func DatabaseURLFromEnv() string {
	if v := os.Getenv("PLAYSTORE_DATABASE_URL"); v != "" {
		return v
	}
	return os.Getenv("DATABASE_URL")
}
