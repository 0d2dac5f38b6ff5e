package scanner

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"sort"
	"strings"
	"unicode"
)

// NormalizeCatalogURL validates a configured catalog URL and returns its
// canonical form:
//   - scheme must be http or https and a host must be present
//   - scheme and host are lower-cased and default ports dropped
//   - the path is cleaned and a trailing slash removed (except for "/")
//   - query parameters are sorted and the fragment removed
func NormalizeCatalogURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("could not parse URL: %w", err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", raw)
	}

	if u.Path == "" {
		u.Path = "/"
	}
	cleaned := path.Clean(u.Path)
	if !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}
	u.Path = cleaned
	if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimRight(u.Path, "/")
	}

	host := strings.ToLower(u.Host)
	port := ""
	if ph, pp, err := net.SplitHostPort(host); err == nil {
		host, port = ph, pp
	}
	if port != "" && !(u.Scheme == "http" && port == "80") && !(u.Scheme == "https" && port == "443") {
		u.Host = net.JoinHostPort(host, port)
	} else {
		u.Host = host
	}

	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			sort.Strings(q[k])
		}
		u.RawQuery = q.Encode()
	}
	u.Fragment = ""

	return u.String(), nil
}

// SearchTerm derives the reference search term from a listing title: the
// first maxWords words, lower-cased, with punctuation stripped. maxWords <= 0
// keeps every word.
func SearchTerm(title string, maxWords int) string {
	words := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
	}

	return strings.Join(words, " ")
}
