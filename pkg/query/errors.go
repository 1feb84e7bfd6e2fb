package query

import "errors"

var (
	// ErrClosed is returned by every operation on a closed Client or Observer.
	ErrClosed = errors.New("query client is closed")
	// ErrNotFound is returned by a Store when a key has no record.
	ErrNotFound = errors.New("query record not found")
	// ErrNoFetcher is returned when a fetch is requested for a query without a Fetch function.
	ErrNoFetcher = errors.New("query has no fetch function")
	// ErrDisabled is returned by Refetch on an observer whose Enabled guard is false.
	ErrDisabled = errors.New("query is disabled")
)
