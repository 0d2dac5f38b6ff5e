package scanner_test

import (
	"arbitrage/internal/scanner"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeCatalogURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{
			name: "lowercases scheme and host, drops default port",
			in:   "HTTPS://WWW.Vinted.DE:443/catalog/",
			want: "https://www.vinted.de/catalog",
		},
		{
			name: "sorts query and drops fragment",
			in:   "https://www.vinted.de/catalog?search_text=nike&order=newest_first#top",
			want: "https://www.vinted.de/catalog?order=newest_first&search_text=nike",
		},
		{
			name: "keeps non default port",
			in:   "http://localhost:8081/catalog",
			want: "http://localhost:8081/catalog",
		},
		{
			name: "empty path becomes root",
			in:   "https://www.vinted.de",
			want: "https://www.vinted.de/",
		},
		{
			name: "cleans dot segments",
			in:   "https://www.vinted.de/a/./b/../catalog",
			want: "https://www.vinted.de/a/catalog",
		},
		{name: "relative", in: "/catalog", wantErr: true},
		{name: "unsupported scheme", in: "ftp://www.vinted.de/catalog", wantErr: true},
		{name: "garbage", in: "http://[::1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scanner.NormalizeCatalogURL(tt.in)
			if tt.wantErr {
				require.Error(t, err)

				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSearchTerm(t *testing.T) {
	require.Equal(t, "nike air max 90", scanner.SearchTerm("Nike Air Max 90 - Größe 42, neu!", 4))
	require.Equal(t, "lego 75192 millennium", scanner.SearchTerm("LEGO® 75192: Millennium Falcon", 3))
	require.Equal(t, "größe 42", scanner.SearchTerm("Größe 42", 0))
	require.Empty(t, scanner.SearchTerm(" -- ", 4))
}
