package urlutil

import "testing"

func TestIsValid(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/page", true},
		{"http://example.com", true},
		{"HTTP://EXAMPLE.COM/path", true}, // url.Parse lowercases the scheme
		{"ftp://example.com/file", false},
		{"//example.com/protocol-relative", false},
		{"/relative/path", false},
		{"not a url at all", false},
		{"", false},
		{"https://", false},
		{"mailto:someone@example.com", false},
	}
	for _, tt := range tests {
		if got := IsValid(tt.url); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase host", "https://Example.COM/Page", "https://example.com/Page"},
		{"strip fragment", "https://example.com/page#section", "https://example.com/page"},
		{"strip default https port", "https://example.com:443/page", "https://example.com/page"},
		{"strip default http port", "http://example.com:80/page", "http://example.com/page"},
		{"keep custom port", "https://example.com:8443/page", "https://example.com:8443/page"},
		{"sort query params", "https://example.com/p?b=2&a=1", "https://example.com/p?a=1&b=2"},
		{"trim trailing slash", "https://example.com/docs/", "https://example.com/docs"},
		{"root path preserved", "https://example.com/", "https://example.com/"},
		{"empty path becomes root", "https://example.com", "https://example.com/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonicalize(tt.in); got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	urls := []string{
		"https://Example.com:443/Docs/?b=2&a=1#frag",
		"http://site.org/a/b/c/",
		"https://example.com",
	}
	for _, raw := range urls {
		once := Canonicalize(raw)
		twice := Canonicalize(once)
		if once != twice {
			t.Errorf("Canonicalize not idempotent for %q: %q != %q", raw, once, twice)
		}
	}
}

func TestKeywordFilterAdmit(t *testing.T) {
	f := NewKeywordFilter([]string{"quantum", "comput"}, 1)

	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/quantum-computing-basics", true},
		{"https://example.com/articles?topic=quantum", true},
		{"https://example.com/Computing/intro", true}, // path lowered before match
		{"https://example.com/unrelated/page", false},
		{"https://example.com/", false},
		{"ftp://example.com/quantum", false},
		{"not-a-url", false},
	}
	for _, tt := range tests {
		if got := f.Admit(tt.url); got != tt.want {
			t.Errorf("Admit(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestKeywordFilterPercentDecoding(t *testing.T) {
	f := NewKeywordFilter([]string{"machine learning"}, 1)
	if !f.Admit("https://example.com/search?q=machine%20learning") {
		t.Error("expected percent-decoded query to match multi-word keyword")
	}
}

func TestKeywordFilterMinMatches(t *testing.T) {
	f := NewKeywordFilter([]string{"go", "concurrency", "channels"}, 2)

	if f.Admit("https://example.com/go-tutorial") {
		t.Error("single keyword hit should not satisfy minMatches=2")
	}
	if !f.Admit("https://example.com/go-concurrency-patterns") {
		t.Error("two keyword hits should satisfy minMatches=2")
	}
}

func TestKeywordFilterEmptyKeywords(t *testing.T) {
	f := NewKeywordFilter(nil, 1)

	if !f.Admit("https://example.com/anything") {
		t.Error("empty keyword set must admit every valid URL")
	}
	if f.Admit("://broken") {
		t.Error("empty keyword set must still reject invalid URLs")
	}
}

func TestKeywordFilterHostNotSearched(t *testing.T) {
	f := NewKeywordFilter([]string{"example"}, 1)
	if f.Admit("https://example.com/page") {
		t.Error("keyword match against the host must not admit a URL")
	}
}

func BenchmarkCanonicalize(b *testing.B) {
	raw := "https://Example.com:443/Some/Long/Path/?z=26&a=1&m=13#fragment"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Canonicalize(raw)
	}
}
