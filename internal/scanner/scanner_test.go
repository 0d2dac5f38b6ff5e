package scanner_test

import (
	"arbitrage/internal/evaluator"
	mocknotify "arbitrage/internal/notify/mock"
	"arbitrage/internal/scanner"
	"arbitrage/internal/scraper/reference"
	"arbitrage/internal/scraper/source"
	"arbitrage/pkg/domain"
	"arbitrage/pkg/fetch"
	mockfetch "arbitrage/pkg/fetch/mock"
	"arbitrage/pkg/serrors"
	"arbitrage/pkg/storage"
	mockstorage "arbitrage/pkg/storage/mock"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// catalog URLs in canonical form, as they are fetched.
const (
	catalogA = "https://www.vinted.de/catalog?catalog%5B%5D=1"
	catalogB = "https://www.vinted.de/catalog?catalog%5B%5D=2"
	catalogC = "https://www.vinted.de/catalog?catalog%5B%5D=3"
)

// noon is inside the default test window.
var noon = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) //nolint: gochecknoglobals

type item struct {
	title string
	price string
}

func catalogPage(items ...item) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="feed-grid">`)
	for i, it := range items {
		fmt.Fprintf(&b, `<div class="feed-grid__item"><a href="/items/%d"></a>`+
			`<p data-testid="item-box-title">%s</p><p data-testid="item-box-price">%s</p></div>`, i+1, it.title, it.price)
	}
	b.WriteString(`</div></body></html>`)

	return b.String()
}

func soldPage(prices ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><ul class="srp-results">`)
	for i, p := range prices {
		fmt.Fprintf(&b, `<li class="s-item"><div class="s-item__wrapper">`+
			`<a class="s-item__link" href="https://www.ebay.de/itm/%d"></a>`+
			`<div class="s-item__title">Sold item %d</div><span class="s-item__price">EUR %s</span></div></li>`, i, i, p)
	}
	b.WriteString(`</ul></body></html>`)

	return b.String()
}

type fixture struct {
	ctrl     *gomock.Controller
	fetcher  *mockfetch.MockFetcher
	notifier *mocknotify.MockNotifier
	storage  *mockstorage.MockStorage
	options  scanner.Options
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	return &fixture{
		ctrl:     ctrl,
		fetcher:  mockfetch.NewMockFetcher(ctrl),
		notifier: mocknotify.NewMockNotifier(ctrl),
		storage:  mockstorage.NewMockStorage(ctrl),
		options: scanner.Options{
			Categories: []scanner.Category{
				{Name: "a", CatalogURL: catalogA},
				{Name: "b", CatalogURL: catalogB},
				{Name: "c", CatalogURL: catalogC},
			},
			MinROI:          decimal.NewFromInt(20),
			Window:          scanner.Window{StartHour: 8, EndHour: 22, Location: time.UTC},
			SearchTermWords: 4,
			MaxAttempts:     2,
			Now:             func() time.Time { return noon },
		},
	}
}

func (f *fixture) scanner(t *testing.T, withStorage bool) scanner.Scanner {
	t.Helper()

	src, err := source.New(f.fetcher, source.DefaultOptions())
	require.NoError(t, err)
	ref, err := reference.New(f.fetcher, reference.Options{})
	require.NoError(t, err)

	deps := scanner.Deps{
		Source:    src,
		Reference: ref,
		Evaluator: evaluator.New(evaluator.FlatPercentFees{Flat: decimal.NewFromInt(5)}),
		Notifier:  f.notifier,
	}
	if withStorage {
		deps.Storage = f.storage
	}

	return scanner.New(deps, f.options)
}

// route answers fetches from a page table keyed by URL prefix.
func (f *fixture) route(pages map[string]string, errs map[string]error) *gomock.Call {
	return f.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, url string, _ http.Header) (string, error) {
			for prefix, err := range errs {
				if strings.HasPrefix(url, prefix) {
					return "", err
				}
			}
			for prefix, page := range pages {
				if strings.HasPrefix(url, prefix) {
					return page, nil
				}
			}

			return "", fmt.Errorf("unexpected url %s", url)
		},
	).AnyTimes()
}

func okNotification(f *fixture) {
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, res *domain.ScanResult) domain.NotificationResult {
			return domain.NotificationResult{Success: true, Message: "sent", FilteredCount: len(res.Filtered())}
		})
}

func TestWindow_Allows(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2025, 3, 1, h, 30, 0, 0, time.UTC) }

	tests := []struct {
		name   string
		window scanner.Window
		hour   int
		want   bool
	}{
		{"inside", scanner.Window{StartHour: 8, EndHour: 22}, 12, true},
		{"start inclusive", scanner.Window{StartHour: 8, EndHour: 22}, 8, true},
		{"end exclusive", scanner.Window{StartHour: 8, EndHour: 22}, 22, false},
		{"before", scanner.Window{StartHour: 8, EndHour: 22}, 3, false},
		{"wrap late", scanner.Window{StartHour: 22, EndHour: 6}, 23, true},
		{"wrap early", scanner.Window{StartHour: 22, EndHour: 6}, 2, true},
		{"wrap outside", scanner.Window{StartHour: 22, EndHour: 6}, 12, false},
		{"always", scanner.Window{StartHour: 0, EndHour: 0}, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.window.Allows(at(tt.hour)))
		})
	}
}

func TestWindow_AllowsUsesLocation(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	w := scanner.Window{StartHour: 8, EndHour: 22, Location: berlin}
	// 07:30 UTC is 08:30 in Berlin during winter time.
	require.True(t, w.Allows(time.Date(2025, 1, 15, 7, 30, 0, 0, time.UTC)))
	require.False(t, w.Allows(time.Date(2025, 1, 15, 21, 30, 0, 0, time.UTC)))
}

func TestScanner_OutsideWindowSkipsWithoutFetching(t *testing.T) {
	f := newFixture(t)
	f.options.Now = func() time.Time { return time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC) }
	f.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Times(0)

	res, err := f.scanner(t, false).RunScan(context.Background(), scanner.Request{})
	require.NoError(t, err)
	require.True(t, res.Skipped)
	require.False(t, res.Success())
	require.Empty(t, res.Deals)
	require.Empty(t, res.Outcomes)
	require.Nil(t, res.Notification)
	require.Equal(t, []string{"a", "b", "c"}, res.Categories)
}

func TestScanner_OneFailingCategory(t *testing.T) {
	f := newFixture(t)
	f.route(map[string]string{
		catalogA:              catalogPage(item{"Nike Air Max 90", "50,00 €"}, item{"Ohne Preis", "auf Anfrage"}),
		catalogC:              catalogPage(item{"Lego Millennium Falcon 75192", "40,00 €"}),
		"https://www.ebay.de/": soldPage("100,00", "90,00", "110,00"),
	}, map[string]error{
		catalogB: &fetch.FetchError{Host: "www.vinted.de", StatusCode: http.StatusInternalServerError},
	})
	okNotification(f)
	f.storage.EXPECT().StoreScan(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, res domain.ScanResult) error {
			require.Len(t, res.Deals, 2)

			return nil
		})

	s := f.scanner(t, true)
	res, err := s.RunScan(context.Background(), scanner.Request{})
	require.NoError(t, err)
	require.True(t, res.Success())
	require.Equal(t, []string{"b"}, res.FailedCategories())

	require.Len(t, res.Outcomes, 3)
	require.Equal(t, domain.CategoryStatusOK, res.Outcomes[0].Status)
	require.Equal(t, 1, res.Outcomes[0].Listings)
	require.Equal(t, 1, res.Outcomes[0].Evaluated)
	require.Equal(t, 1, res.Outcomes[0].Discarded)
	require.Equal(t, domain.CategoryStatusFailed, res.Outcomes[1].Status)
	require.Contains(t, res.Outcomes[1].Error, "500")
	require.Equal(t, domain.CategoryStatusOK, res.Outcomes[2].Status)

	// median 100, fee 5: Nike 100-50-5=45 (90%), Lego 100-40-5=55 (137.5%)
	require.Len(t, res.Deals, 2)
	require.Equal(t, "Lego Millennium Falcon 75192", res.Deals[0].Listing.Title)
	require.True(t, decimal.RequireFromString("137.5").Equal(res.Deals[0].ROI))
	require.Equal(t, "Nike Air Max 90", res.Deals[1].Listing.Title)
	require.True(t, decimal.NewFromInt(45).Equal(res.Deals[1].ProfitAfterFees))
	require.True(t, decimal.NewFromInt(90).Equal(res.Deals[1].ROI))
	require.Equal(t, "a", res.Deals[1].Category)

	require.NotNil(t, res.Notification)
	require.True(t, res.Notification.Success)
	require.Equal(t, 2, res.Notification.FilteredCount)
	require.Same(t, res, s.Last())
}

func TestScanner_ReusesComparablesWithinRun(t *testing.T) {
	f := newFixture(t)
	f.options.Categories = f.options.Categories[:2]
	f.fetcher.EXPECT().Fetch(gomock.Any(), catalogA, gomock.Any()).
		Return(catalogPage(item{"Nike Air Max 90 weiß", "50,00 €"}), nil)
	f.fetcher.EXPECT().Fetch(gomock.Any(), catalogB, gomock.Any()).
		Return(catalogPage(item{"Nike Air Max 90 schwarz", "60,00 €"}), nil)
	f.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Cond(func(url string) bool {
		return strings.Contains(url, "_nkw=nike+air+max+90")
	}), gomock.Any()).Return(soldPage("100,00"), nil).Times(1)
	okNotification(f)

	res, err := f.scanner(t, false).RunScan(context.Background(), scanner.Request{})
	require.NoError(t, err)
	require.Len(t, res.Deals, 2)
}

func TestScanner_FetchesCanonicalCatalogURL(t *testing.T) {
	f := newFixture(t)
	f.options.Categories = []scanner.Category{
		{Name: "a", CatalogURL: "  HTTPS://www.Vinted.de:443/catalog/?order=newest_first&catalog[]=1#top"},
	}
	f.fetcher.EXPECT().Fetch(gomock.Any(),
		"https://www.vinted.de/catalog?catalog%5B%5D=1&order=newest_first", gomock.Any()).
		Return(catalogPage(item{"Nike Air Max 90", "50,00 €"}), nil)
	f.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Cond(func(url string) bool {
		return strings.HasPrefix(url, "https://www.ebay.de/")
	}), gomock.Any()).Return(soldPage("100,00"), nil)
	okNotification(f)

	res, err := f.scanner(t, false).RunScan(context.Background(), scanner.Request{})
	require.NoError(t, err)
	require.True(t, res.Success())
	require.Len(t, res.Deals, 1)
}

func TestScanner_MaxListingsPerCategory(t *testing.T) {
	f := newFixture(t)
	f.options.Categories = f.options.Categories[:1]
	f.options.MaxListingsPerCategory = 2
	f.route(map[string]string{
		catalogA: catalogPage(
			item{"Nike Air Max 90", "50,00 €"},
			item{"Nike Air Force 1", "45,00 €"},
			item{"Nike Dunk Low", "40,00 €"},
		),
		"https://www.ebay.de/": soldPage("100,00"),
	}, nil)
	okNotification(f)

	res, err := f.scanner(t, false).RunScan(context.Background(), scanner.Request{})
	require.NoError(t, err)
	require.Equal(t, 3, res.Outcomes[0].Listings)
	require.Equal(t, 2, res.Outcomes[0].Evaluated)
	require.Equal(t, 2, res.Outcomes[0].Deals)
	require.Len(t, res.Deals, 2)
	for _, d := range res.Deals {
		require.NotEqual(t, "Nike Dunk Low", d.Listing.Title)
	}
}

func TestScanner_NonEvaluableListings(t *testing.T) {
	f := newFixture(t)
	f.options.Categories = f.options.Categories[:1]
	f.route(map[string]string{
		catalogA:              catalogPage(item{"Seltene Vase", "15,00 €"}),
		"https://www.ebay.de/": soldPage(),
	}, nil)
	okNotification(f)

	res, err := f.scanner(t, false).RunScan(context.Background(), scanner.Request{})
	require.NoError(t, err)
	require.True(t, res.Success())
	require.Empty(t, res.Deals)
	require.Equal(t, 1, res.Outcomes[0].NonEvaluable)
}

func TestScanner_FiltersByRequestedMinROI(t *testing.T) {
	f := newFixture(t)
	f.options.Categories = f.options.Categories[:1]
	f.route(map[string]string{
		catalogA:              catalogPage(item{"Nike Air Max 90", "50,00 €"}),
		"https://www.ebay.de/": soldPage("100,00"),
	}, nil)
	okNotification(f)

	minROI := decimal.NewFromInt(95)
	res, err := f.scanner(t, false).RunScan(context.Background(), scanner.Request{MinROI: &minROI})
	require.NoError(t, err)
	require.Len(t, res.Deals, 1)
	require.Empty(t, res.Filtered())
	require.Equal(t, 0, res.Notification.FilteredCount)
}

func TestScanner_BusyConflict(t *testing.T) {
	f := newFixture(t)
	f.options.Categories = f.options.Categories[:1]

	started := make(chan struct{})
	release := make(chan struct{})
	f.fetcher.EXPECT().Fetch(gomock.Any(), catalogA, gomock.Any()).DoAndReturn(
		func(context.Context, string, http.Header) (string, error) {
			close(started)
			<-release

			return catalogPage(), nil
		})
	okNotification(f)

	s := f.scanner(t, false)
	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = s.RunScan(context.Background(), scanner.Request{})
	}()

	<-started
	require.True(t, s.Busy())
	_, err := s.RunScan(context.Background(), scanner.Request{})
	require.ErrorIs(t, err, serrors.ErrConflict)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
	require.False(t, s.Busy())
	require.NotNil(t, s.Last())
}

func TestScanner_CancellationKeepsProcessedCategories(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.fetcher.EXPECT().Fetch(gomock.Any(), catalogA, gomock.Any()).
		Return(catalogPage(item{"Nike Air Max 90", "50,00 €"}), nil)
	f.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Cond(func(url string) bool {
		return strings.HasPrefix(url, "https://www.ebay.de/")
	}), gomock.Any()).Return(soldPage("100,00"), nil)
	f.fetcher.EXPECT().Fetch(gomock.Any(), catalogB, gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ http.Header) (string, error) {
			cancel()

			return "", ctx.Err()
		})
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Times(0)

	res, err := f.scanner(t, false).RunScan(ctx, scanner.Request{})
	require.NoError(t, err)
	require.True(t, res.Canceled)
	require.False(t, res.Success())
	require.Len(t, res.Deals, 1)
	require.Equal(t, domain.CategoryStatusOK, res.Outcomes[0].Status)
	require.Equal(t, domain.CategoryStatusCanceled, res.Outcomes[1].Status)
	require.Equal(t, domain.CategoryStatusCanceled, res.Outcomes[2].Status)
	require.Empty(t, res.FailedCategories())
}

func TestScanner_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		categories []scanner.Category
		wantErr    string
	}{
		{name: "no categories", wantErr: "no categories configured"},
		{
			name:       "relative catalog url",
			categories: []scanner.Category{{Name: "x", CatalogURL: "/catalog"}},
			wantErr:    "invalid catalog URL",
		},
		{
			name:       "nothing to scan",
			categories: []scanner.Category{{Name: "x"}},
			wantErr:    "neither catalog URL nor search term",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.options.Categories = tt.categories
			f.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			res, err := f.scanner(t, false).RunScan(context.Background(), scanner.Request{})
			require.NoError(t, err)
			require.False(t, res.Success())
			require.Contains(t, res.Err, tt.wantErr)
			require.Contains(t, res.Err, serrors.ErrInvalidConfig.Error())
		})
	}
}

func TestScanner_InvalidRequest(t *testing.T) {
	f := newFixture(t)
	s := f.scanner(t, false)

	_, err := s.RunScan(context.Background(), scanner.Request{Categories: []string{"unknown"}})
	require.ErrorIs(t, err, serrors.ErrBadRequest)

	negative := decimal.NewFromInt(-1)
	_, err = s.RunScan(context.Background(), scanner.Request{MinROI: &negative})
	require.ErrorIs(t, err, serrors.ErrBadRequest)
	require.False(t, s.Busy())
}

func TestScanner_SearchCategoryUsesSourceSearch(t *testing.T) {
	f := newFixture(t)
	f.options.Categories = []scanner.Category{{Name: "jackets", SearchTerm: "barbour jacke"}}
	f.fetcher.EXPECT().Fetch(gomock.Any(),
		"https://www.vinted.de/catalog?order=newest_first&search_text=barbour+jacke", gomock.Any()).
		Return(catalogPage(item{"Barbour Bedale Wachsjacke", "30,00 €"}), nil)
	f.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Cond(func(url string) bool {
		return strings.Contains(url, "_nkw=barbour+jacke")
	}), gomock.Any()).Return(soldPage("80,00"), nil)
	okNotification(f)

	res, err := f.scanner(t, false).RunScan(context.Background(), scanner.Request{Categories: []string{"jackets"}})
	require.NoError(t, err)
	require.Len(t, res.Deals, 1)
	require.Equal(t, "barbour jacke", res.Outcomes[0].SearchTerm)
}

func TestScanner_StorageFailureDoesNotFailRun(t *testing.T) {
	f := newFixture(t)
	f.options.Categories = f.options.Categories[:1]
	f.route(map[string]string{catalogA: catalogPage()}, nil)
	okNotification(f)
	f.storage.EXPECT().StoreScan(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	res, err := f.scanner(t, true).RunScan(context.Background(), scanner.Request{})
	require.NoError(t, err)
	require.True(t, res.Success())
}

func TestScanner_Enqueue(t *testing.T) {
	f := newFixture(t)
	f.storage.EXPECT().AddJob(gomock.Any(), gomock.Any(), gomock.Nil()).DoAndReturn(
		func(_ context.Context, args scanner.JobArgs, _ *river.InsertOpts) (bool, error) {
			require.Equal(t, []string{"a"}, args.Categories)
			require.Equal(t, 2, args.InsertOpts().MaxAttempts)

			return true, nil
		})

	added, err := f.scanner(t, true).Enqueue(context.Background(), scanner.Request{Categories: []string{"a"}})
	require.NoError(t, err)
	require.True(t, added)

	_, err = f.scanner(t, false).Enqueue(context.Background(), scanner.Request{})
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestScanner_Result(t *testing.T) {
	f := newFixture(t)
	s := f.scanner(t, true)
	id := domain.ScanID{1}

	f.storage.EXPECT().ScanByID(gomock.Any(), id).Return(nil, nil)
	_, err := s.Result(context.Background(), id)
	require.ErrorIs(t, err, serrors.ErrNotFound)

	stored := &domain.ScanResult{ID: id}
	f.storage.EXPECT().ScanByID(gomock.Any(), id).Return(stored, nil)
	got, err := s.Result(context.Background(), id)
	require.NoError(t, err)
	require.Same(t, stored, got)
}

func TestScanner_Results(t *testing.T) {
	f := newFixture(t)
	s := f.scanner(t, true)
	next := noon.Add(-time.Hour)

	f.storage.EXPECT().Scans(gomock.Any(), time.Time{}, uint(10)).
		Return(storage.ScanPage{Scans: []domain.ScanResult{{}}, NextCursor: &next}, nil)
	scans, cursor, err := s.Results(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, scans, 1)
	require.Equal(t, "2025-03-01T11:00:00Z", cursor)

	f.storage.EXPECT().Scans(gomock.Any(), next, uint(10)).Return(storage.ScanPage{}, nil)
	_, cursor, err = s.Results(context.Background(), cursor, 10)
	require.NoError(t, err)
	require.Empty(t, cursor)

	_, _, err = s.Results(context.Background(), "yesterday", 10)
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestScanner_LatestResult(t *testing.T) {
	f := newFixture(t)
	s := f.scanner(t, true)

	f.storage.EXPECT().LatestScan(gomock.Any()).Return(nil, nil)
	_, err := s.LatestResult(context.Background())
	require.ErrorIs(t, err, serrors.ErrNotFound)

	f.storage.EXPECT().LatestScan(gomock.Any()).Return(nil, errors.New("db down"))
	_, err = s.LatestResult(context.Background())
	require.Error(t, err)
}

func TestScanner_DealsFromLastRun(t *testing.T) {
	f := newFixture(t)
	f.options.Categories = f.options.Categories[:2]
	f.route(map[string]string{
		catalogA: catalogPage(
			item{"Nike Air Max 90", "50,00 €"},
			item{"Adidas Samba OG", "80,00 €"},
			item{"Puma Suede Classic", "30,00 €"},
		),
		catalogB:               catalogPage(),
		"https://www.ebay.de/": soldPage("100,00"),
	}, nil)
	okNotification(f)

	s := f.scanner(t, false)
	ctx := context.Background()

	deals, err := s.Deals(ctx, scanner.DealQuery{})
	require.NoError(t, err)
	require.Empty(t, deals, "no run yet")

	_, err = s.RunScan(ctx, scanner.Request{})
	require.NoError(t, err)

	urls := func(deals []domain.ArbitrageDeal) []string {
		out := make([]string, 0, len(deals))
		for _, d := range deals {
			out = append(out, d.Listing.URL)
		}

		return out
	}

	deals, err = s.Deals(ctx, scanner.DealQuery{})
	require.NoError(t, err)
	require.Equal(t, []string{"https://www.vinted.de/items/3", "https://www.vinted.de/items/1"}, urls(deals))

	deals, err = s.Deals(ctx, scanner.DealQuery{Limit: 1})
	require.NoError(t, err)
	require.Equal(t, []string{"https://www.vinted.de/items/3"}, urls(deals))

	zero := decimal.Zero
	deals, err = s.Deals(ctx, scanner.DealQuery{MinROI: &zero, Category: "a"})
	require.NoError(t, err)
	require.Len(t, deals, 3)

	deals, err = s.Deals(ctx, scanner.DealQuery{Category: "b"})
	require.NoError(t, err)
	require.Empty(t, deals)

	deals, err = s.Deals(ctx, scanner.DealQuery{Since: noon.Add(time.Hour)})
	require.NoError(t, err)
	require.Empty(t, deals)

	_, err = s.Deals(ctx, scanner.DealQuery{Category: "unknown"})
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestScanner_DealsFromStorage(t *testing.T) {
	f := newFixture(t)
	s := f.scanner(t, true)
	since := noon.Add(-24 * time.Hour)
	stored := []domain.ArbitrageDeal{{Category: "a", ROI: decimal.NewFromInt(50)}}

	f.storage.EXPECT().Deals(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, filter storage.DealFilter) ([]domain.ArbitrageDeal, error) {
			require.True(t, decimal.NewFromInt(20).Equal(filter.MinROI), "configured threshold by default")
			require.Equal(t, "a", filter.Category)
			require.Equal(t, since, filter.Since)
			require.Equal(t, uint(5), filter.Limit)

			return stored, nil
		})

	deals, err := s.Deals(context.Background(), scanner.DealQuery{Since: since, Category: "a", Limit: 5})
	require.NoError(t, err)
	require.Equal(t, stored, deals)

	f.storage.EXPECT().Deals(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
	_, err = s.Deals(context.Background(), scanner.DealQuery{})
	require.Error(t, err)

	negative := decimal.NewFromInt(-1)
	_, err = s.Deals(context.Background(), scanner.DealQuery{MinROI: &negative})
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}
