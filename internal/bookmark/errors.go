package bookmark

import "errors"

// Sentinel errors surfaced by repositories. Crawl and enrichment
// failures are absorbed into typed results instead.
var (
	// ErrQuotaExceeded is returned by the local store when the anonymous
	// free-tier cap has been reached before any record is written.
	ErrQuotaExceeded = errors.New("free tier bookmark limit reached")

	// ErrNotFound is returned when an operation references a record that
	// does not exist in the caller's partition.
	ErrNotFound = errors.New("bookmark not found")

	// ErrMissingURL is returned when a request omits the url field.
	ErrMissingURL = errors.New("url is required")
)
