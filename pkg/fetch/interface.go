// Package fetch is the HTTP fetch layer used by the marketplace scrapers. It
// issues GET requests with randomized browser-like headers, spaces requests to
// the same host with a shared, jittered per-host limiter and reports every
// network failure, timeout or non-2xx response as a *FetchError. Nothing in
// this package retries; retry policy belongs to the caller.
package fetch

import (
	"context"
	"net/http"
)

// Fetcher downloads the raw HTML of a page.
//
//go:generate mockgen -package mockfetch -source=interface.go -destination=mock/mockfetch.go *
type Fetcher interface {
	// Fetch issues a GET request to url with the given extra headers and
	// returns the response body. Failures are reported as *FetchError.
	Fetch(ctx context.Context, url string, headers http.Header) (string, error)
}
