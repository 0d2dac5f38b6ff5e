package fetch

import (
	"arbitrage/pkg/serrors"
	"net/http"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/require"
)

func TestResponseError(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		resp       *network.Response
		wantStatus int
		wantKind   error
		retryAfter time.Duration
	}{
		{name: "no response"},
		{name: "ok", resp: &network.Response{Status: http.StatusOK}},
		{name: "no content", resp: &network.Response{Status: http.StatusNoContent}},
		{
			name:       "forbidden",
			resp:       &network.Response{Status: http.StatusForbidden},
			wantStatus: http.StatusForbidden,
			wantKind:   serrors.ErrFetch,
		},
		{
			name:       "not found",
			resp:       &network.Response{Status: http.StatusNotFound},
			wantStatus: http.StatusNotFound,
			wantKind:   serrors.ErrFetch,
		},
		{
			name: "rate limited",
			resp: &network.Response{
				Status:  http.StatusTooManyRequests,
				Headers: network.Headers{"Retry-After": "30"},
			},
			wantStatus: http.StatusTooManyRequests,
			wantKind:   serrors.ErrRateLimited,
			retryAfter: 30 * time.Second,
		},
		{
			name:       "server error",
			resp:       &network.Response{Status: http.StatusBadGateway},
			wantStatus: http.StatusBadGateway,
			wantKind:   serrors.ErrFetch,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fe := responseError("www.vinted.de", tc.resp, now)
			if tc.wantStatus == 0 {
				require.Nil(t, fe)

				return
			}

			require.NotNil(t, fe)
			require.Equal(t, "www.vinted.de", fe.Host)
			require.Equal(t, tc.wantStatus, fe.StatusCode)
			require.False(t, fe.Timeout)
			require.Equal(t, tc.retryAfter, fe.RetryAfter)
			require.ErrorIs(t, fe, tc.wantKind)
		})
	}
}

func TestNewBrowserFetcher_KeepsUserAgentPool(t *testing.T) {
	pool := NewUserAgentPool(nil, "agent-a", "agent-b")
	b := NewBrowserFetcher(BrowserOptions{Headless: true, UserAgents: pool})
	defer b.Close()

	require.Same(t, pool, b.userAgents)
	require.Equal(t, DefaultTimeout, b.timeout)
}
