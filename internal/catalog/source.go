package catalog

import (
	"context"
	"net/http"
	"time"

	"github.com/jonathan/playstore-scraper/internal/fetch"
)

// PageSource retrieves the HTML of a details page.
// Like fetch.URL, it may return a result alongside an error for non-200 statuses.
type PageSource interface {
	Get(ctx context.Context, url string) (*fetch.Result, error)
}

// HTTPSource fetches pages with a plain HTTP GET.
type HTTPSource struct {
	Options *fetch.Options
}

// NewHTTPSource creates an HTTPSource asking for content in lang.
func NewHTTPSource(timeout time.Duration, lang string) *HTTPSource {
	opts := fetch.DefaultOptions()
	if timeout > 0 {
		opts.Timeout = timeout
	}
	if lang != "" {
		opts.Headers = map[string]string{"Accept-Language": lang}
	}
	return &HTTPSource{Options: opts}
}

// Get implements PageSource.
func (s *HTTPSource) Get(ctx context.Context, url string) (*fetch.Result, error) {
	return fetch.URL(ctx, url, s.Options)
}

// BrowserSource renders pages in headless Chrome.
// A rendered page has no status code; it is reported as 200.
type BrowserSource struct {
	Timeout time.Duration
	Verbose bool
}

// Get implements PageSource.
func (s *BrowserSource) Get(ctx context.Context, url string) (*fetch.Result, error) {
	html, err := fetch.WithBrowser(ctx, url, s.Timeout, s.Verbose)
	if err != nil {
		return nil, &fetch.Error{URL: url, Message: "browser rendering failed", Cause: err}
	}
	return &fetch.Result{
		URL:         url,
		HTML:        html,
		ContentType: "text/html",
		StatusCode:  http.StatusOK,
	}, nil
}
