package fetch

import (
	"arbitrage/pkg/serrors"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// FetchError describes a failed page fetch: a network error, a timeout or a
// non-2xx response. It matches serrors.ErrFetch, and additionally
// serrors.ErrTimeout for timeouts and serrors.ErrRateLimited for HTTP 429.
type FetchError struct { //nolint: revive
	// Host is the target host of the request.
	Host string
	// StatusCode is the HTTP status, 0 when no response was received.
	StatusCode int
	// Timeout is set when the request exceeded its deadline.
	Timeout bool
	// RetryAfter is the server requested pause parsed from a Retry-After
	// header, zero when absent.
	RetryAfter time.Duration
	// Err is the underlying transport error, if any.
	Err error
}

func (e *FetchError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("fetch %s: timeout", e.Host)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: unexpected status %d", e.Host, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v", e.Host, e.Err)
	default:
		return fmt.Sprintf("fetch %s: failed", e.Host)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets errors.Is match the fetch error against semantic kinds.
func (e *FetchError) Is(target error) bool {
	switch target {
	case serrors.ErrFetch:
		return true
	case serrors.ErrTimeout:
		return e.Timeout
	case serrors.ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}

	return false
}

// StatusOrTimeout returns "timeout", the HTTP status code or "network error".
func (e *FetchError) StatusOrTimeout() string {
	switch {
	case e.Timeout:
		return "timeout"
	case e.StatusCode != 0:
		return fmt.Sprintf("%d", e.StatusCode)
	default:
		return "network error"
	}
}

// AsFetchError extracts a *FetchError from err's chain.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}

	return nil, false
}

// ParseRetryAfter reads a Retry-After header given either in seconds or as an
// HTTP date. It returns zero for a missing, malformed or past value.
func ParseRetryAfter(h http.Header, now time.Time) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return max(time.Duration(secs)*time.Second, 0)
	}
	at, err := http.ParseTime(v)
	if err != nil {
		return 0
	}

	return max(at.Sub(now), 0)
}
