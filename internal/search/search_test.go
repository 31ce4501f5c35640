package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type stubEngine struct {
	name   string
	weight float64
	urls   []string
	err    error
}

func (e *stubEngine) Name() string    { return e.name }
func (e *stubEngine) Weight() float64 { return e.weight }
func (e *stubEngine) Search(_ context.Context, _ string, limit int) ([]string, error) {
	if e.err != nil {
		return nil, e.err
	}
	if limit < len(e.urls) {
		return e.urls[:limit], nil
	}
	return e.urls, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSeedsWeightedMerge(t *testing.T) {
	// The URL both engines agree on accumulates 4 points and must come
	// first, ahead of single-engine results.
	a := &stubEngine{name: "a", weight: 2, urls: []string{
		"https://example.com/shared",
		"https://example.com/only-a",
	}}
	b := &stubEngine{name: "b", weight: 2, urls: []string{
		"https://example.com/only-b",
		"https://example.com/shared",
	}}
	p := NewProviderWithEngines(discardLogger(), a, b)

	seeds, err := p.Seeds(context.Background(), "query", 3)
	if err != nil {
		t.Fatalf("Seeds: %v", err)
	}
	if len(seeds) != 3 {
		t.Fatalf("seeds = %v", seeds)
	}
	if seeds[0] != "https://example.com/shared" {
		t.Errorf("seeds[0] = %q, want the shared URL", seeds[0])
	}
}

func TestSeedsTieBreakByDiscoveryOrder(t *testing.T) {
	a := &stubEngine{name: "a", weight: 2, urls: []string{
		"https://example.com/first",
		"https://example.com/second",
	}}
	p := NewProviderWithEngines(discardLogger(), a)

	seeds, err := p.Seeds(context.Background(), "query", 2)
	if err != nil {
		t.Fatalf("Seeds: %v", err)
	}
	if seeds[0] != "https://example.com/first" || seeds[1] != "https://example.com/second" {
		t.Errorf("seeds = %v, want discovery order preserved", seeds)
	}
}

func TestSeedsEngineFailureTolerated(t *testing.T) {
	broken := &stubEngine{name: "broken", weight: 3, err: errors.New("engine down")}
	working := &stubEngine{name: "working", weight: 2, urls: []string{"https://example.com/result"}}
	p := NewProviderWithEngines(discardLogger(), broken, working)

	seeds, err := p.Seeds(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("Seeds with one engine down: %v", err)
	}
	if len(seeds) != 1 || seeds[0] != "https://example.com/result" {
		t.Errorf("seeds = %v", seeds)
	}
}

func TestSeedsAllEnginesFailed(t *testing.T) {
	p := NewProviderWithEngines(discardLogger(),
		&stubEngine{name: "a", err: errors.New("down")},
		&stubEngine{name: "b", err: errors.New("down")},
	)

	if _, err := p.Seeds(context.Background(), "query", 5); err == nil {
		t.Fatal("expected error when every engine fails")
	}
}

func TestSeedsLimits(t *testing.T) {
	a := &stubEngine{name: "a", weight: 2, urls: []string{
		"https://example.com/1",
		"https://example.com/2",
		"https://example.com/3",
	}}
	p := NewProviderWithEngines(discardLogger(), a)

	seeds, err := p.Seeds(context.Background(), "query", 2)
	if err != nil {
		t.Fatalf("Seeds: %v", err)
	}
	if len(seeds) != 2 {
		t.Errorf("len = %d, want 2", len(seeds))
	}

	if seeds, _ := p.Seeds(context.Background(), "query", 0); seeds != nil {
		t.Errorf("n=0 should yield nil, got %v", seeds)
	}
}

func TestBingEngineParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, `<html><body><ol id="b_results">
<li class="b_algo"><h2><a href="https://example.com/result-one">One</a></h2></li>
<li class="b_algo"><h2><a href="https://example.com/result-two">Two</a></h2></li>
<li class="b_ad"><h2><a href="https://ads.example.com/x">Ad</a></h2></li>
</ol></body></html>`)
	}))
	defer srv.Close()

	e := &bingEngine{client: srv.Client(), userAgent: "test-agent"}
	urls, err := e.searchAt(context.Background(), srv.URL, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{"https://example.com/result-one", "https://example.com/result-two"}
	if len(urls) != len(want) {
		t.Fatalf("urls = %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestDuckDuckGoEngineParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
  "AbstractURL": "https://en.wikipedia.org/wiki/Topic",
  "Results": [{"FirstURL": "https://example.com/official"}],
  "RelatedTopics": [
    {"FirstURL": "https://example.com/related-one"},
    {"Topics": [{"FirstURL": "https://example.com/nested"}]}
  ]
}`)
	}))
	defer srv.Close()

	e := &duckDuckGoEngine{client: srv.Client(), userAgent: "test-agent"}
	urls, err := e.searchAt(context.Background(), srv.URL, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{
		"https://en.wikipedia.org/wiki/Topic",
		"https://example.com/official",
		"https://example.com/related-one",
		"https://example.com/nested",
	}
	if len(urls) != len(want) {
		t.Fatalf("urls = %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestDuckDuckGoLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"RelatedTopics": [
  {"FirstURL": "https://example.com/1"},
  {"FirstURL": "https://example.com/2"},
  {"FirstURL": "https://example.com/3"}
]}`)
	}))
	defer srv.Close()

	e := &duckDuckGoEngine{client: srv.Client(), userAgent: "test-agent"}
	urls, err := e.searchAt(context.Background(), srv.URL, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(urls) != 2 {
		t.Errorf("urls = %v, want 2 entries", urls)
	}
}

func TestEngineTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 50 * time.Millisecond}
	e := &bingEngine{client: client, userAgent: "test-agent"}
	if _, err := e.searchAt(context.Background(), srv.URL, 5); err == nil {
		t.Fatal("expected timeout error")
	}
}
