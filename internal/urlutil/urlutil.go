// Package urlutil provides URL validation, canonicalization, and the
// keyword pre-filter applied to candidate URLs before fetching.
package urlutil

import (
	"net/url"
	"sort"
	"strings"
)

// IsValid reports whether rawURL is an absolute http or https URL with a
// non-empty host.
func IsValid(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// Canonicalize normalizes a URL for visited-set membership:
//   - lowercases scheme and host
//   - removes fragment
//   - removes default ports (80 for http, 443 for https)
//   - sorts query parameters
//   - removes trailing slash (except root)
func Canonicalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	host := u.Hostname()
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = host
	}

	if u.RawQuery != "" {
		params := u.Query()
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sorted []string
		for _, k := range keys {
			vals := params[k]
			sort.Strings(vals)
			for _, v := range vals {
				sorted = append(sorted, url.QueryEscape(k)+"="+url.QueryEscape(v))
			}
		}
		u.RawQuery = strings.Join(sorted, "&")
	}

	if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimRight(u.Path, "/")
	}
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// Hostname returns the lowercased host of rawURL, or "" if unparsable.
func Hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// KeywordFilter decides whether a URL looks relevant to a keyword set
// before any fetch happens. Matching is plain substring search over the
// percent-decoded path and query, lowercased.
type KeywordFilter struct {
	keywords   []string
	minMatches int
}

// NewKeywordFilter builds a filter over lowercase keywords. minMatches
// values below 1 are clamped to 1.
func NewKeywordFilter(keywords []string, minMatches int) *KeywordFilter {
	if minMatches < 1 {
		minMatches = 1
	}
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return &KeywordFilter{keywords: lowered, minMatches: minMatches}
}

// Admit reports whether rawURL passes the filter. Invalid URLs are always
// rejected. With an empty keyword set every valid URL is admitted.
func (f *KeywordFilter) Admit(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}
	if len(f.keywords) == 0 {
		return true
	}

	haystack := u.Path
	if u.RawQuery != "" {
		haystack += "?" + u.RawQuery
	}
	if decoded, err := url.QueryUnescape(haystack); err == nil {
		haystack = decoded
	}
	haystack = strings.ToLower(haystack)

	matches := 0
	for _, kw := range f.keywords {
		if strings.Contains(haystack, kw) {
			matches++
			if matches >= f.minMatches {
				return true
			}
		}
	}
	return false
}
