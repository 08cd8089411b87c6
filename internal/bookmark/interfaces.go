package bookmark

import (
	"context"
	"time"
)

// Repository persists bookmarks. Both backends (anonymous local store
// and authenticated remote store) implement identical semantics; every
// call is scoped to the owner's partition.
type Repository interface {
	Save(ctx context.Context, req CreateRequest) (Bookmark, error)
	FindAll(ctx context.Context, owner Identity, filter Filter) ([]Bookmark, error)
	FindByID(ctx context.Context, owner Identity, id string) (Bookmark, error)
	Delete(ctx context.Context, owner Identity, id string) error
	RemoveAll(ctx context.Context, owner Identity) error
	Count(ctx context.Context, owner Identity) (int, error)
	Update(ctx context.Context, owner Identity, id string, update Update) error
}

// Fetcher performs a single HTTP GET. A non-2xx response is returned as
// a FetchResponse, not an error; errors mean no response was received.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResponse, error)
}

// Crawler runs the bounded fetch-and-extract loop. Ordinary crawl
// failures are absorbed into the result, never returned as errors.
type Crawler interface {
	Crawl(ctx context.Context, url string) CrawlResult
}

// Enricher produces a summary and tags for extracted page metadata.
// Implementations never fail: any upstream error degrades into an
// empty-ish analysis.
type Enricher interface {
	Analyze(ctx context.Context, title, description string) AIAnalysis
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Sleeper waits between retry attempts, honoring context cancellation.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// IDGenerator produces bookmark and guest IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
