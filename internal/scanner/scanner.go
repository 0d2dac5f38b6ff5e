package scanner

import (
	"arbitrage/internal/config"
	"arbitrage/internal/evaluator"
	"arbitrage/internal/notify"
	"arbitrage/internal/scraper/source"
	"arbitrage/pkg/domain"
	"arbitrage/pkg/logger"
	"arbitrage/pkg/metrics"
	"arbitrage/pkg/serrors"
	"arbitrage/pkg/storage"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// finalizeTimeout bounds persistence and notification after a run.
const finalizeTimeout = time.Minute

// Category is a configured catalog to scan.
type Category struct {
	Name       string
	CatalogURL string
	SearchTerm string
}

// SourceScraper extracts listings from the source marketplace.
type SourceScraper interface {
	ScrapeCatalog(ctx context.Context, catalogURL string) ([]domain.Listing, source.Stats, error)
	SearchURL(term string) string
}

// ReferenceScraper looks up sold comparables on the reference marketplace.
type ReferenceScraper interface {
	SoldComparables(ctx context.Context, searchTerm string) (domain.ComparableSet, error)
}

// Options configure the orchestrator. They are typically derived from the
// application configuration with NewOptions.
type Options struct {
	Categories []Category
	// MinROI is the default ROI threshold in percent.
	MinROI decimal.Decimal
	Window Window
	// CategoryConcurrency is how many categories are processed at once.
	CategoryConcurrency int
	// MaxListingsPerCategory caps evaluated listings per category, 0 means no cap.
	MaxListingsPerCategory int
	// SearchTermWords is the length of derived reference search terms.
	SearchTermWords int
	// MaxAttempts is the retry budget of enqueued scan jobs.
	MaxAttempts int
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) (Options, error) {
	loc, err := time.LoadLocation(cfg.Scan.Timezone)
	if err != nil {
		return Options{}, serrors.Wrap(serrors.ErrInvalidConfig, err, "invalid timezone %q", cfg.Scan.Timezone)
	}

	categories := make([]Category, 0, len(cfg.Scan.Categories))
	for _, c := range cfg.Scan.Categories {
		categories = append(categories, Category{Name: c.Name, CatalogURL: c.CatalogURL, SearchTerm: c.SearchTerm})
	}

	return Options{
		Categories: categories,
		MinROI:     decimal.NewFromFloat(cfg.Scan.MinROI),
		Window: Window{
			StartHour: cfg.Scan.WindowStartHour,
			EndHour:   cfg.Scan.WindowEndHour,
			Location:  loc,
		},
		CategoryConcurrency:    cfg.Scan.CategoryConcurrency,
		MaxListingsPerCategory: cfg.Scan.MaxListingsPerCategory,
		SearchTermWords:        cfg.Scan.SearchTermWords,
		MaxAttempts:            1,
	}, nil
}

// Deps are the collaborators of the orchestrator. Storage, Notifier and
// Metrics are optional.
type Deps struct {
	Source    SourceScraper
	Reference ReferenceScraper
	Evaluator *evaluator.Evaluator
	Storage   storage.Storage
	Notifier  notify.Notifier
	Metrics   *metrics.Metrics
}

// scanner is the concrete implementation of the Scanner interface.
type scanner struct {
	options Options
	deps    Deps

	running atomic.Bool

	mu   sync.RWMutex
	last *domain.ScanResult
}

// New creates a new Scanner.
func New(deps Deps, options Options) Scanner {
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.CategoryConcurrency < 1 {
		options.CategoryConcurrency = 1
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.NopNotifier{}
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop()
	}

	return &scanner{options: options, deps: deps}
}

// Busy implements Scanner.
func (s *scanner) Busy() bool { return s.running.Load() }

// Last implements Scanner.
func (s *scanner) Last() *domain.ScanResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.last
}

// RunScan implements Scanner. Category failures are recorded in the result
// and never abort the run. A canceled context ends the run between steps and
// returns the partial result with Canceled set.
func (s *scanner) RunScan(ctx context.Context, req Request) (*domain.ScanResult, error) {
	categories, minROI, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	if !s.running.CompareAndSwap(false, true) {
		return nil, serrors.With(serrors.ErrConflict, "scan already running")
	}
	defer s.running.Store(false)

	result := &domain.ScanResult{
		ID:         domain.ScanID(uuid.New()),
		StartedAt:  s.options.Now(),
		MinROI:     minROI,
		Categories: make([]string, 0, len(categories)),
	}
	for _, c := range categories {
		result.Categories = append(result.Categories, c.Name)
	}
	ctx = logger.WithFields(ctx, zap.Stringer("scanID", result.ID))

	switch {
	case !s.options.Window.Allows(result.StartedAt):
		result.Skipped = true
		logger.Info(ctx, "outside of operating window, skipping scan",
			zap.Int("startHour", s.options.Window.StartHour),
			zap.Int("endHour", s.options.Window.EndHour))
	default:
		categories, err = s.validate(categories)
		if err != nil {
			result.Err = err.Error()
			logger.Error(ctx, "invalid scan configuration", zap.Error(err))

			break
		}
		s.scanCategories(ctx, categories, result)
	}

	result.FinishedAt = s.options.Now()
	s.finalize(ctx, result)

	return result, nil
}

// resolve applies the request on top of the configured defaults.
func (s *scanner) resolve(req Request) ([]Category, decimal.Decimal, error) {
	minROI := s.options.MinROI
	if req.MinROI != nil {
		minROI = *req.MinROI
	}
	if minROI.IsNegative() {
		return nil, decimal.Decimal{}, serrors.With(serrors.ErrBadRequest, "minimum ROI must not be negative")
	}

	if len(req.Categories) == 0 {
		return s.options.Categories, minROI, nil
	}

	byName := make(map[string]Category, len(s.options.Categories))
	for _, c := range s.options.Categories {
		byName[c.Name] = c
	}
	selected := make([]Category, 0, len(req.Categories))
	for _, name := range req.Categories {
		c, ok := byName[name]
		if !ok {
			return nil, decimal.Decimal{}, serrors.With(serrors.ErrBadRequest, "unknown category %q", name)
		}
		selected = append(selected, c)
	}

	return selected, minROI, nil
}

// validate checks categories and returns a copy with every catalog URL in
// its canonical form.
func (s *scanner) validate(categories []Category) ([]Category, error) {
	if len(categories) == 0 {
		return nil, serrors.With(serrors.ErrInvalidConfig, "no categories configured")
	}
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if c.Name == "" {
			return nil, serrors.With(serrors.ErrInvalidConfig, "category without name")
		}
		if c.CatalogURL == "" && c.SearchTerm == "" {
			return nil, serrors.With(serrors.ErrInvalidConfig, "category %q has neither catalog URL nor search term", c.Name)
		}
		if c.CatalogURL != "" {
			normalized, err := NormalizeCatalogURL(c.CatalogURL)
			if err != nil {
				return nil, serrors.Wrap(serrors.ErrInvalidConfig, err, "category %q has an invalid catalog URL", c.Name)
			}
			c.CatalogURL = normalized
		}
		out = append(out, c)
	}

	return out, nil
}

// categoryRun is the output of one category.
type categoryRun struct {
	outcome domain.CategoryOutcome
	deals   []domain.ArbitrageDeal
}

func (s *scanner) scanCategories(ctx context.Context, categories []Category, result *domain.ScanResult) {
	runs := make([]categoryRun, len(categories))
	for i, c := range categories {
		runs[i].outcome = domain.CategoryOutcome{
			Category:   c.Name,
			SearchTerm: c.SearchTerm,
			Status:     domain.CategoryStatusCanceled,
		}
	}

	comps := &compsCache{lookup: s.deps.Reference.SoldComparables, sets: map[string]compsEntry{}}

	var g errgroup.Group
	g.SetLimit(s.options.CategoryConcurrency)
	for i, c := range categories {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			runs[i] = s.scanCategory(ctx, c, comps)

			return nil
		})
	}
	_ = g.Wait()

	for _, run := range runs {
		result.Outcomes = append(result.Outcomes, run.outcome)
		if run.outcome.Status == domain.CategoryStatusOK {
			result.Deals = append(result.Deals, run.deals...)
		}
	}
	evaluator.SortByROI(result.Deals)

	if err := ctx.Err(); err != nil {
		result.Canceled = true
		result.Err = fmt.Sprintf("scan canceled: %s", err)
		logger.Warn(ctx, "scan canceled, returning partial result", zap.Int("deals", len(result.Deals)))
	}
}

func (s *scanner) scanCategory(ctx context.Context, c Category, comps *compsCache) categoryRun {
	ctx = logger.WithFields(ctx, zap.String("category", c.Name))
	run := categoryRun{outcome: domain.CategoryOutcome{Category: c.Name, SearchTerm: c.SearchTerm}}

	catalogURL := c.CatalogURL
	if catalogURL == "" {
		catalogURL = s.deps.Source.SearchURL(c.SearchTerm)
	}

	listings, stats, err := s.deps.Source.ScrapeCatalog(ctx, catalogURL)
	if err != nil {
		return s.failed(ctx, run, err)
	}
	run.outcome.Strategy = stats.Strategy
	run.outcome.Discarded = stats.Discarded
	run.outcome.Listings = len(listings)

	if limit := s.options.MaxListingsPerCategory; limit > 0 && len(listings) > limit {
		listings = listings[:limit]
	}
	run.outcome.Evaluated = len(listings)

	for _, listing := range listings {
		if ctx.Err() != nil {
			run.outcome.Status = domain.CategoryStatusCanceled

			return run
		}

		term := c.SearchTerm
		if term == "" {
			term = SearchTerm(listing.Title, s.options.SearchTermWords)
		}
		if term == "" {
			run.outcome.NonEvaluable++

			continue
		}

		set, err := comps.get(ctx, term)
		if err != nil {
			if ctx.Err() != nil {
				run.outcome.Status = domain.CategoryStatusCanceled

				return run
			}
			logger.Warn(ctx, "could not get comparables", zap.String("term", term), zap.Error(err))
			run.outcome.NonEvaluable++

			continue
		}

		deal, err := s.deps.Evaluator.Evaluate(listing, set, c.Name, s.options.Now())
		if errors.Is(err, evaluator.ErrNonEvaluable) {
			run.outcome.NonEvaluable++

			continue
		}
		if err != nil {
			return s.failed(ctx, run, err)
		}
		run.deals = append(run.deals, deal)
	}

	run.outcome.Status = domain.CategoryStatusOK
	run.outcome.Deals = len(run.deals)
	logger.Info(ctx, "scanned category",
		zap.String("strategy", run.outcome.Strategy),
		zap.Int("listings", run.outcome.Listings),
		zap.Int("evaluated", run.outcome.Evaluated),
		zap.Int("nonEvaluable", run.outcome.NonEvaluable),
		zap.Int("deals", run.outcome.Deals))

	return run
}

func (s *scanner) failed(ctx context.Context, run categoryRun, err error) categoryRun {
	if ctx.Err() != nil {
		run.outcome.Status = domain.CategoryStatusCanceled

		return run
	}

	logger.Error(ctx, "could not scan category", zap.Error(err))
	s.deps.Metrics.RecordCategoryFailure(ctx, run.outcome.Category)
	run.outcome.Status = domain.CategoryStatusFailed
	run.outcome.Error = err.Error()
	run.deals = nil

	return run
}

// finalize persists, notifies and records the run. Neither step can fail it.
func (s *scanner) finalize(ctx context.Context, result *domain.ScanResult) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	if !result.Skipped && !result.Canceled && result.Err == "" {
		res := s.deps.Notifier.Notify(ctx, result)
		result.Notification = &res
	}

	if s.deps.Storage != nil {
		if err := s.deps.Storage.StoreScan(ctx, *result); err != nil {
			logger.Error(ctx, "could not store scan result", zap.Error(err))
		}
	}

	outcome := "ok"
	switch {
	case result.Skipped:
		outcome = "skipped"
	case result.Canceled:
		outcome = "canceled"
	case result.Err != "":
		outcome = "error"
	}
	s.deps.Metrics.RecordScan(ctx, outcome, result.Duration(), len(result.Deals), len(result.Filtered()))

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	logger.Info(ctx, "scan finished",
		zap.String("outcome", outcome),
		zap.Duration("took", result.Duration()),
		zap.Int("deals", len(result.Deals)),
		zap.Int("filtered", len(result.Filtered())),
		zap.Strings("failedCategories", result.FailedCategories()))
}

// Enqueue implements Scanner. It reports false when an equal run is already queued.
func (s *scanner) Enqueue(ctx context.Context, req Request) (bool, error) {
	if _, _, err := s.resolve(req); err != nil {
		return false, err
	}
	if s.deps.Storage == nil {
		return false, serrors.With(serrors.ErrBadRequest, "background scans need a database")
	}

	added, err := s.deps.Storage.AddJob(ctx, NewJobArgs(req, s.options.MaxAttempts, 0), nil)
	if err != nil {
		return false, fmt.Errorf("could not add job: %w", err)
	}

	return added, nil
}

// Result implements Scanner.
func (s *scanner) Result(ctx context.Context, id domain.ScanID) (*domain.ScanResult, error) {
	if s.deps.Storage == nil {
		if last := s.Last(); last != nil && last.ID == id {
			return last, nil
		}

		return nil, serrors.With(serrors.ErrNotFound, "scan not found")
	}

	res, err := s.deps.Storage.ScanByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get scan result: %w", err)
	}
	if res == nil {
		return nil, serrors.With(serrors.ErrNotFound, "scan not found")
	}

	return res, nil
}

// Results implements Scanner. The cursor is an RFC3339 timestamp returned by
// a previous call; empty starts from the newest run.
func (s *scanner) Results(ctx context.Context, cursor string, limit uint) ([]domain.ScanResult, string, error) {
	var cursorTime time.Time
	if cursor != "" {
		t, err := time.Parse(time.RFC3339Nano, cursor)
		if err != nil {
			return nil, "", serrors.Wrap(serrors.ErrBadRequest, err, "invalid cursor")
		}
		cursorTime = t
	}

	if s.deps.Storage == nil {
		if last := s.Last(); last != nil && cursor == "" {
			return []domain.ScanResult{*last}, "", nil
		}

		return nil, "", nil
	}

	page, err := s.deps.Storage.Scans(ctx, cursorTime, limit)
	if err != nil {
		return nil, "", fmt.Errorf("could not get scan results: %w", err)
	}

	var next string
	if page.NextCursor != nil {
		next = page.NextCursor.Format(time.RFC3339Nano)
	}

	return page.Scans, next, nil
}

// LatestResult implements Scanner.
func (s *scanner) LatestResult(ctx context.Context) (*domain.ScanResult, error) {
	if last := s.Last(); last != nil {
		return last, nil
	}
	if s.deps.Storage == nil {
		return nil, serrors.With(serrors.ErrNotFound, "no scan has run yet")
	}

	res, err := s.deps.Storage.LatestScan(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get latest scan result: %w", err)
	}
	if res == nil {
		return nil, serrors.With(serrors.ErrNotFound, "no scan has run yet")
	}

	return res, nil
}

// Deals implements Scanner.
func (s *scanner) Deals(ctx context.Context, q DealQuery) ([]domain.ArbitrageDeal, error) {
	req := Request{MinROI: q.MinROI}
	if q.Category != "" {
		req.Categories = []string{q.Category}
	}
	_, minROI, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	if s.deps.Storage != nil {
		deals, err := s.deps.Storage.Deals(ctx, storage.DealFilter{
			Since:    q.Since,
			MinROI:   minROI,
			Category: q.Category,
			Limit:    q.Limit,
		})
		if err != nil {
			return nil, fmt.Errorf("could not get deals: %w", err)
		}

		return deals, nil
	}

	last := s.Last()
	if last == nil {
		return []domain.ArbitrageDeal{}, nil
	}

	seen := make(map[string]struct{}, len(last.Deals))
	deals := make([]domain.ArbitrageDeal, 0, len(last.Deals))
	for _, d := range last.Deals {
		if !d.MeetsROI(minROI) || d.Timestamp.Before(q.Since) {
			continue
		}
		if q.Category != "" && d.Category != q.Category {
			continue
		}
		if _, dup := seen[d.Listing.URL]; dup {
			continue
		}
		seen[d.Listing.URL] = struct{}{}
		deals = append(deals, d)
		if q.Limit > 0 && uint(len(deals)) == q.Limit {
			break
		}
	}

	return deals, nil
}

// compsEntry is a cached lookup outcome. Failures are cached too so one bad
// search term is not fetched again within the run.
type compsEntry struct {
	set domain.ComparableSet
	err error
}

// compsCache deduplicates reference lookups by search term within a run.
type compsCache struct {
	lookup func(ctx context.Context, term string) (domain.ComparableSet, error)
	group  singleflight.Group

	mu   sync.Mutex
	sets map[string]compsEntry
}

func (c *compsCache) get(ctx context.Context, term string) (domain.ComparableSet, error) {
	c.mu.Lock()
	entry, ok := c.sets[term]
	c.mu.Unlock()
	if ok {
		return entry.set, entry.err
	}

	v, err, _ := c.group.Do(term, func() (any, error) {
		set, err := c.lookup(ctx, term)
		if ctx.Err() == nil {
			c.mu.Lock()
			c.sets[term] = compsEntry{set: set, err: err}
			c.mu.Unlock()
		}

		return set, err
	})
	if err != nil {
		return domain.ComparableSet{}, err
	}

	return v.(domain.ComparableSet), nil //nolint: forcetypeassert
}
