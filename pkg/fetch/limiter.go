package fetch

import (
	"arbitrage/pkg/logger"
	"context"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultMinDelay is the lower bound of the per-host cooldown.
	DefaultMinDelay = 2 * time.Second
	// DefaultMaxDelay is the upper bound of the per-host cooldown.
	DefaultMaxDelay = 5 * time.Second
)

// LimiterOptions configures a HostLimiter. Zero values fall back to defaults.
type LimiterOptions struct {
	MinDelay time.Duration
	MaxDelay time.Duration
	// Rand drives the jitter. Tests pass a fixed seed.
	Rand *rand.Rand
	// Now and Sleep replace the wall clock in tests.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// HostLimiter spaces requests to the same host by a random delay in
// [MinDelay, MaxDelay]. Requests to different hosts do not wait on each other.
// One limiter is shared by every fetcher of a process so concurrent callers
// still respect the cooldown.
type HostLimiter struct {
	mu       sync.Mutex
	next     map[string]time.Time
	minDelay time.Duration
	maxDelay time.Duration
	rnd      *rand.Rand
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewHostLimiter creates a HostLimiter.
func NewHostLimiter(opts LimiterOptions) *HostLimiter {
	l := &HostLimiter{
		next:     make(map[string]time.Time),
		minDelay: opts.MinDelay,
		maxDelay: opts.MaxDelay,
		rnd:      opts.Rand,
		now:      opts.Now,
		sleep:    opts.Sleep,
	}
	if l.minDelay <= 0 {
		l.minDelay = DefaultMinDelay
	}
	if l.maxDelay < l.minDelay {
		l.maxDelay = max(DefaultMaxDelay, l.minDelay)
	}
	if l.rnd == nil {
		seed := uint64(time.Now().UnixNano()) //nolint: gosec
		l.rnd = rand.New(rand.NewPCG(seed, seed>>1)) //nolint: gosec
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.sleep == nil {
		l.sleep = sleepContext
	}

	return l
}

// Wait blocks until a request to host may start, reserving the next slot for
// that host before returning. It returns ctx.Err() when ctx ends first.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	now := l.now()
	at := l.next[host]
	if at.Before(now) {
		at = now
	}
	l.next[host] = at.Add(l.jitter())
	l.mu.Unlock()

	wait := at.Sub(now)
	if wait <= 0 {
		return nil
	}

	logger.Debug(ctx, "waiting for host cooldown", zap.String("host", host), zap.Duration("wait", wait))

	return l.sleep(ctx, wait)
}

// Defer pushes the next slot for host at least d into the future. Servers
// that answer 429 with Retry-After are not asked again before it passes.
func (l *HostLimiter) Defer(host string, d time.Duration) {
	if d <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if at := l.now().Add(d); at.After(l.next[host]) {
		l.next[host] = at
	}
}

// jitter must be called with l.mu held.
func (l *HostLimiter) jitter() time.Duration {
	span := int64(l.maxDelay - l.minDelay)
	if span <= 0 {
		return l.minDelay
	}

	return l.minDelay + time.Duration(l.rnd.Int64N(span+1))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// LimitedFetcher waits on a HostLimiter before delegating to the wrapped
// Fetcher.
type LimitedFetcher struct {
	next    Fetcher
	limiter *HostLimiter
}

var _ Fetcher = (*LimitedFetcher)(nil)

// NewLimitedFetcher wraps next with limiter.
func NewLimitedFetcher(next Fetcher, limiter *HostLimiter) *LimitedFetcher {
	return &LimitedFetcher{next: next, limiter: limiter}
}

func (f *LimitedFetcher) Fetch(ctx context.Context, rawURL string, headers http.Header) (string, error) {
	host := hostOf(rawURL)
	if err := f.limiter.Wait(ctx, host); err != nil {
		return "", err
	}

	body, err := f.next.Fetch(ctx, rawURL, headers)
	if fe, ok := AsFetchError(err); ok && fe.RetryAfter > 0 {
		logger.Warn(ctx, "host asked to back off", zap.String("host", host), zap.Duration("retryAfter", fe.RetryAfter))
		f.limiter.Defer(host, fe.RetryAfter)
	}

	return body, err
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}

	return u.Host
}
