// Package catalog fetches app details from the Play Store and classifies every
// failure into a closed set of outcome kinds.
package catalog

import (
	"context"

	"github.com/jonathan/playstore-scraper/internal/types"
)

// Kind classifies the result of one fetch.
type Kind string

const (
	// KindSuccess means the record was retrieved and parsed.
	KindSuccess Kind = "success"
	// KindNotFound means the catalog has no app with that key.
	KindNotFound Kind = "not_found"
	// KindTransient covers connectivity, timeout and overload failures.
	KindTransient Kind = "transient_error"
	// KindUnexpected covers everything else: odd statuses, unparseable pages.
	KindUnexpected Kind = "unexpected_error"
)

// Outcome is the result of fetching one app. Record is set only for KindSuccess.
type Outcome struct {
	Kind   Kind
	Record types.CatalogRecord
	Detail string
}

// OK reports whether the outcome carries a record.
func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}

// Success wraps a fetched record.
func Success(record types.CatalogRecord) Outcome {
	return Outcome{Kind: KindSuccess, Record: record}
}

// NotFound reports an app missing from the catalog.
func NotFound(detail string) Outcome {
	return Outcome{Kind: KindNotFound, Detail: detail}
}

// Transient reports a failure worth retrying later.
func Transient(detail string) Outcome {
	return Outcome{Kind: KindTransient, Detail: detail}
}

// Unexpected reports any other failure.
func Unexpected(detail string) Outcome {
	return Outcome{Kind: KindUnexpected, Detail: detail}
}

// Fetcher retrieves the record of one app. Implementations never return an
// error: every failure is expressed as an Outcome.
type Fetcher interface {
	Fetch(ctx context.Context, appID string) Outcome
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, appID string) Outcome

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, appID string) Outcome {
	return f(ctx, appID)
}
