package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jonathan/playstore-scraper/internal/catalog"
)

// Default backoff bounds between attempts of a transient failure.
const (
	DefaultRetryInitialInterval = 500 * time.Millisecond
	DefaultRetryMaxInterval     = 10 * time.Second
)

// RetryPolicy controls re-fetching of transient failures. The zero value
// makes exactly one attempt per identifier.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = DefaultRetryInitialInterval
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	b.MaxInterval = DefaultRetryMaxInterval
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	// Attempts are bounded by MaxRetries, not by elapsed time
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxRetries)), ctx)
}

var errTransient = errors.New("transient fetch failure")

// fetch runs the fetcher under the retry policy and returns the last outcome
// with the number of attempts made.
func (o *Orchestrator) fetch(ctx context.Context, appID string) (catalog.Outcome, int) {
	if o.retry.MaxRetries <= 0 {
		return o.fetcher.Fetch(ctx, appID), 1
	}

	var outcome catalog.Outcome
	attempts := 0
	operation := func() error {
		attempts++
		outcome = o.fetcher.Fetch(ctx, appID)
		if outcome.Kind == catalog.KindTransient {
			return errTransient
		}
		return nil
	}

	_ = backoff.RetryNotify(operation, o.retry.backOff(ctx), func(_ error, wait time.Duration) {
		if o.verbose {
			log.Printf("[RETRY] %s: %s (attempt %d, next in %s)", appID, outcome.Detail, attempts, wait)
		}
	})
	return outcome, attempts
}
