package fetch

import (
	"arbitrage/pkg/metrics"
	"arbitrage/pkg/serrors"
	"context"
	"errors"
	"net/http"
	"time"
)

// InstrumentedFetcher records a metric for every fetch of the wrapped Fetcher.
type InstrumentedFetcher struct {
	next    Fetcher
	metrics *metrics.Metrics
}

var _ Fetcher = (*InstrumentedFetcher)(nil)

// NewInstrumentedFetcher wraps next.
func NewInstrumentedFetcher(next Fetcher, m *metrics.Metrics) *InstrumentedFetcher {
	if m == nil {
		m = metrics.Nop()
	}

	return &InstrumentedFetcher{next: next, metrics: m}
}

func (f *InstrumentedFetcher) Fetch(ctx context.Context, rawURL string, headers http.Header) (string, error) {
	start := time.Now()
	body, err := f.next.Fetch(ctx, rawURL, headers)
	f.metrics.RecordFetch(ctx, hostOf(rawURL), outcome(err), time.Since(start))

	return body, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, serrors.ErrTimeout):
		return "timeout"
	case errors.Is(err, serrors.ErrRateLimited):
		return "rate_limited"
	}
	if fe, ok := AsFetchError(err); ok && fe.StatusCode != 0 {
		return "http_error"
	}

	return "network_error"
}
