package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonathan/playstore-scraper/internal/fetch"
)

// DefaultBaseURL is the Play Store origin.
const DefaultBaseURL = "https://play.google.com"

// DefaultLang and DefaultCountry select the locale of fetched details.
const (
	DefaultLang    = "en"
	DefaultCountry = "us"
)

const detailsPath = "/store/apps/details"

// Options configures a PlayStore client.
type Options struct {
	BaseURL string
	Lang    string
	Country string
	// Source defaults to an HTTPSource with fetch.DefaultTimeout.
	Source PageSource
}

// PlayStore fetches app details pages and extracts a record from them.
// It keeps no state between calls.
type PlayStore struct {
	baseURL string
	lang    string
	country string
	source  PageSource
}

// NewPlayStore creates a PlayStore client.
func NewPlayStore(opts Options) (*PlayStore, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid catalog base URL %q", baseURL)
	}

	lang := opts.Lang
	if lang == "" {
		lang = DefaultLang
	}
	country := opts.Country
	if country == "" {
		country = DefaultCountry
	}

	source := opts.Source
	if source == nil {
		source = NewHTTPSource(fetch.DefaultTimeout, lang)
	}

	return &PlayStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		lang:    lang,
		country: country,
		source:  source,
	}, nil
}

// DetailsURL returns the details page URL of appID in the client's locale.
func (c *PlayStore) DetailsURL(appID string) string {
	query := url.Values{}
	query.Set("id", appID)
	query.Set("hl", c.lang)
	query.Set("gl", c.country)
	return c.baseURL + detailsPath + "?" + query.Encode()
}

// Fetch implements Fetcher. It performs exactly one page request.
func (c *PlayStore) Fetch(ctx context.Context, appID string) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = Unexpected(fmt.Sprintf("panic while fetching %s: %v", appID, r))
		}
	}()

	pageURL := c.DetailsURL(appID)
	result, err := c.source.Get(ctx, pageURL)
	if err != nil {
		return classify(appID, err)
	}
	if result == nil {
		return Unexpected(fmt.Sprintf("empty response for %s", appID))
	}
	if isNotFoundPage(result.HTML) {
		return NotFound(fmt.Sprintf("app %s not found on Play Store", appID))
	}

	record, err := ParseDetails(result.HTML)
	if err != nil {
		return Unexpected(fmt.Sprintf("failed to parse details page for %s: %v", appID, err))
	}
	record["appId"] = appID
	record["url"] = pageURL
	return Success(record)
}

// classify maps a page retrieval error onto an outcome kind.
func classify(appID string, err error) Outcome {
	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) && fetchErr.StatusCode != 0 {
		switch status := fetchErr.StatusCode; {
		case status == http.StatusNotFound || status == http.StatusGone:
			return NotFound(fmt.Sprintf("app %s not found on Play Store", appID))
		case status == http.StatusRequestTimeout ||
			status == http.StatusTooManyRequests ||
			status >= http.StatusInternalServerError:
			return Transient(err.Error())
		case fetchErr.Cause != nil && fetch.IsNetworkError(fetchErr.Cause):
			return Transient(err.Error())
		default:
			return Unexpected(err.Error())
		}
	}
	if fetch.IsNetworkError(err) {
		return Transient(err.Error())
	}
	return Unexpected(err.Error())
}

var notFoundMarkers = []string{
	"the requested url was not found on this server",
	"we're sorry, the requested url was not found",
}

// isNotFoundPage detects the error page served with status 200 to browsers.
func isNotFoundPage(html string) bool {
	lower := strings.ToLower(html)
	for _, marker := range notFoundMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
