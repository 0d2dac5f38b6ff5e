package fetch

import (
	"arbitrage/pkg/logger"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 30 * time.Second

const tracerName = "arbitrage/pkg/fetch"

// HTTPOptions configures an HTTPFetcher.
type HTTPOptions struct {
	// Timeout bounds each request, DefaultTimeout when zero.
	Timeout time.Duration
	// UserAgents rotates the User-Agent header. A wall-clock seeded pool is
	// used when nil.
	UserAgents *UserAgentPool
	// Transport replaces the underlying round tripper, mostly in tests.
	Transport http.RoundTripper
	// DisableCloudflareBypass leaves the TLS fingerprint untouched.
	DisableCloudflareBypass bool
}

// HTTPFetcher fetches pages with a plain HTTP client that looks like a desktop
// browser.
type HTTPFetcher struct {
	client *resty.Client
	agents *UserAgentPool
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgents == nil {
		opts.UserAgents = NewUserAgentPool(nil)
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	}
	if !opts.DisableCloudflareBypass {
		client.SetTransport(cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport))
	}
	instrument(client)

	return &HTTPFetcher{client: client, agents: opts.UserAgents}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, headers http.Header) (string, error) {
	host := hostOf(rawURL)

	req := f.client.R().
		SetContext(ctx).
		SetHeaderMultiValues(browserHeaders(rawURL, f.agents.Pick())).
		SetHeaderMultiValues(headers)

	start := time.Now()
	res, err := req.Get(rawURL)
	if err != nil {
		fe := &FetchError{Host: host, Timeout: isTimeout(err), Err: err}
		logger.Warn(ctx, "fetch failed", zap.String("url", rawURL), zap.Error(fe))

		return "", fe
	}

	logger.Debug(ctx, "fetched page",
		zap.String("url", rawURL),
		zap.Int("status", res.StatusCode()),
		zap.Duration("took", time.Since(start)),
	)

	if !res.IsSuccess() {
		return "", &FetchError{
			Host:       host,
			StatusCode: res.StatusCode(),
			RetryAfter: ParseRetryAfter(res.Header(), time.Now()),
		}
	}

	return res.String(), nil
}

// browserHeaders returns the header set a desktop browser sends on a top
// level navigation to rawURL.
func browserHeaders(rawURL, userAgent string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "de-DE,de;q=0.9,en-US;q=0.8,en;q=0.7")
	h.Set("Connection", "keep-alive")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "none")
	h.Set("Cache-Control", "max-age=0")
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		h.Set("Referer", fmt.Sprintf("%s://%s/", u.Scheme, u.Host))
	}

	return h
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error

	return errors.As(err, &nerr) && nerr.Timeout()
}

// instrument opens a client span around every request.
func instrument(client *resty.Client) {
	tracer := otel.Tracer(tracerName)

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		ctx, _ := tracer.Start(req.Context(), "fetch "+hostOf(req.URL), trace.WithSpanKind(trace.SpanKindClient))
		req.SetContext(ctx)

		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		span := trace.SpanFromContext(res.Request.Context())
		defer span.End()

		span.SetAttributes(
			attribute.String("http.request.method", res.Request.Method),
			attribute.String("url.full", res.Request.URL),
			attribute.Int("http.response.status_code", res.StatusCode()),
		)
		if !res.IsSuccess() {
			span.SetStatus(codes.Error, res.Status())
		}

		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		span := trace.SpanFromContext(req.Context())
		defer span.End()

		span.SetAttributes(attribute.String("url.full", req.URL))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	})
}
