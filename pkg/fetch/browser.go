package fetch

import (
	"arbitrage/pkg/logger"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// BrowserOptions configures a BrowserFetcher.
type BrowserOptions struct {
	Headless bool
	// Timeout bounds each navigation, DefaultTimeout when zero.
	Timeout time.Duration
	// Settle is how long to wait after navigation for client side rendering.
	Settle     time.Duration
	UserAgents *UserAgentPool
}

// BrowserFetcher renders pages in a headless Chrome. It is slower than
// HTTPFetcher but sees markup produced by scripts.
type BrowserFetcher struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	timeout     time.Duration
	settle      time.Duration
	userAgents  *UserAgentPool
}

var _ Fetcher = (*BrowserFetcher)(nil)

// NewBrowserFetcher starts a browser allocator. Call Close to release it.
func NewBrowserFetcher(opts BrowserOptions) *BrowserFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgents == nil {
		opts.UserAgents = NewUserAgentPool(nil)
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("lang", "de-DE"),
		chromedp.WindowSize(1920, 1080),
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	return &BrowserFetcher{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		timeout:     opts.Timeout,
		settle:      opts.Settle,
		userAgents:  opts.UserAgents,
	}
}

// Fetch navigates a fresh tab to rawURL with a freshly picked user agent and
// returns the rendered document. A non-2xx navigation response fails with a
// *FetchError carrying the status. Extra headers are not supported by this
// mode and are ignored.
func (b *BrowserFetcher) Fetch(ctx context.Context, rawURL string, _ http.Header) (string, error) {
	host := hostOf(rawURL)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "browser "+host)
	defer span.End()
	span.SetAttributes(attribute.String("url.full", rawURL))

	tabCtx, tabCancel := chromedp.NewContext(b.allocCtx)
	defer tabCancel()
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	runCtx, cancel := context.WithTimeout(tabCtx, b.timeout)
	defer cancel()

	ua := b.userAgents.Pick()
	if err := chromedp.Run(runCtx, emulation.SetUserAgentOverride(ua).WithAcceptLanguage("de-DE,de;q=0.9")); err != nil {
		return "", browserFailure(ctx, span, rawURL, &FetchError{Host: host, Err: err})
	}

	resp, err := chromedp.RunResponse(runCtx, chromedp.Navigate(rawURL))
	if err != nil {
		return "", browserFailure(ctx, span, rawURL, &FetchError{Host: host, Timeout: isTimeout(err) || (runCtx.Err() != nil && ctx.Err() == nil), Err: err})
	}
	if resp != nil {
		span.SetAttributes(attribute.Int64("http.response.status_code", resp.Status))
	}
	if fe := responseError(host, resp, time.Now()); fe != nil {
		return "", browserFailure(ctx, span, rawURL, fe)
	}

	var html string
	err = chromedp.Run(runCtx,
		chromedp.Sleep(b.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", browserFailure(ctx, span, rawURL, &FetchError{Host: host, Timeout: isTimeout(err) || (runCtx.Err() != nil && ctx.Err() == nil), Err: err})
	}

	return html, nil
}

func browserFailure(ctx context.Context, span trace.Span, rawURL string, fe *FetchError) *FetchError {
	span.RecordError(fe)
	span.SetStatus(codes.Error, fe.Error())
	logger.Warn(ctx, "browser fetch failed", zap.String("url", rawURL), zap.Error(fe))

	return fe
}

// responseError maps the navigation response to a *FetchError, nil for 2xx.
// A nil resp means no network response was involved and is not an error.
func responseError(host string, resp *network.Response, now time.Time) *FetchError {
	if resp == nil || (resp.Status >= 200 && resp.Status < 300) {
		return nil
	}

	h := make(http.Header, len(resp.Headers))
	for k, v := range resp.Headers {
		h.Set(k, fmt.Sprint(v))
	}

	return &FetchError{
		Host:       host,
		StatusCode: int(resp.Status),
		RetryAfter: ParseRetryAfter(h, now),
	}
}

// Close shuts the browser down.
func (b *BrowserFetcher) Close() {
	b.allocCancel()
}
