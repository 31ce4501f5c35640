package crawler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/scourhq/scour/internal/config"
	"github.com/scourhq/scour/internal/heuristics"
	"github.com/scourhq/scour/internal/metrics"
	"github.com/scourhq/scour/internal/store"
	"github.com/scourhq/scour/internal/types"
	"github.com/scourhq/scour/internal/urlutil"
)

// fakeWeb serves canned pages as both Fetcher and Extractor. Fetch
// returns the final URL as the "HTML" so Extract can look the page up.
type fakeWeb struct {
	mu      sync.Mutex
	pages   map[string]fakePage
	fetched []string
}

type fakePage struct {
	redirect string
	content  types.PageContent
	fetchErr error
}

func (w *fakeWeb) Fetch(_ context.Context, rawURL string) (*types.FetchResult, error) {
	w.mu.Lock()
	w.fetched = append(w.fetched, rawURL)
	w.mu.Unlock()

	p, ok := w.pages[rawURL]
	if !ok {
		return nil, &types.FetchError{URL: rawURL, StatusCode: 404, Err: errors.New("not found")}
	}
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	final := rawURL
	if p.redirect != "" {
		final = p.redirect
	}
	return &types.FetchResult{HTML: final, FinalURL: final}, nil
}

func (w *fakeWeb) Extract(pageURL, rawHTML string) (*types.PageContent, error) {
	p, ok := w.pages[rawHTML]
	if !ok {
		return nil, &types.ExtractError{URL: pageURL, Err: errors.New("no content")}
	}
	c := p.content
	return &c, nil
}

func (w *fakeWeb) fetchCount(rawURL string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, u := range w.fetched {
		if u == rawURL {
			n++
		}
	}
	return n
}

func page(title, body string, links ...string) fakePage {
	return fakePage{content: types.PageContent{
		Title:         title,
		Body:          body,
		WordCount:     len(strings.Fields(body)),
		OutboundLinks: links,
	}}
}

// relevantBody scores 0.70 against the keyword "quantum": full title
// component, saturated density, below the length tiers.
func relevantBody(filler string) string {
	return strings.TrimSpace(strings.Repeat("quantum "+filler+" ", 8))
}

func testCrawlerConfig() config.CrawlerConfig {
	cfg := config.DefaultConfig().Crawler
	cfg.MaxDepth = 1
	cfg.MaxWorkers = 4
	cfg.BatchSize = 4
	cfg.NumResults = 3
	cfg.SaveFrequency = 0
	return cfg
}

func quantumPrompt() *types.PromptContext {
	return types.NewPromptContext("quantum", nil, []string{"quantum"})
}

func newTestCrawler(cfg config.CrawlerConfig, web *fakeWeb, st *store.Store, snap StateSaver) *Crawler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pipeline := NewPipeline(web, web, 5, logger)
	ranker := store.NewRanker(cfg.HeuristicWeight, cfg.CosineWeight)
	return NewCrawler(cfg, pipeline, st, ranker, metrics.NewHarvestMeter(), snap, nil, logger)
}

func TestRunCollectsLinkedRelevantPages(t *testing.T) {
	web := &fakeWeb{pages: map[string]fakePage{
		"https://site.test/quantum/a": page("Quantum Research Overview",
			relevantBody("physics entanglement research experiment"),
			"https://site.test/quantum/b"),
		"https://site.test/quantum/b": page("Quantum Computing Guide",
			relevantBody("theory superposition measurement laboratory")),
	}}
	st := store.New()
	c := newTestCrawler(testCrawlerConfig(), web, st, nil)

	visited := make(map[string]struct{})
	worked, err := c.Run(context.Background(), quantumPrompt(), []string{"https://site.test/quantum/a"}, visited)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !worked {
		t.Fatal("Run reported no work")
	}
	if st.Len() != 2 {
		t.Fatalf("store has %d documents, want 2", st.Len())
	}
	for _, u := range []string{"https://site.test/quantum/a", "https://site.test/quantum/b"} {
		if _, ok := visited[urlutil.Canonicalize(u)]; !ok {
			t.Errorf("visited missing %s", u)
		}
	}
	if ratio := c.meter.DepthRatio(0); ratio != 1.0 {
		t.Errorf("depth 0 harvest ratio = %v, want 1.0", ratio)
	}
}

func TestRunFollowsLinksFromIrrelevantPages(t *testing.T) {
	web := &fakeWeb{pages: map[string]fakePage{
		"https://site.test/quantum/hub": page("Cooking Pasta Well",
			strings.TrimSpace(strings.Repeat("pasta sauce tomato basil olive ", 8)),
			"https://site.test/quantum/b"),
		"https://site.test/quantum/b": page("Quantum Computing Guide",
			relevantBody("theory superposition measurement laboratory")),
	}}
	st := store.New()
	c := newTestCrawler(testCrawlerConfig(), web, st, nil)

	worked, err := c.Run(context.Background(), quantumPrompt(),
		[]string{"https://site.test/quantum/hub"}, make(map[string]struct{}))
	if err != nil || !worked {
		t.Fatalf("Run = (%v, %v)", worked, err)
	}
	// The off-topic hub is not stored, but its links still expand the
	// frontier so the on-topic page one level deeper is found.
	if web.fetchCount("https://site.test/quantum/b") != 1 {
		t.Fatal("depth-1 on-topic page never fetched: links from the off-topic seed were dropped")
	}
	if st.Len() != 1 {
		t.Fatalf("store has %d documents, want 1", st.Len())
	}
	docs := st.Documents()
	if docs[0].URL != "https://site.test/quantum/b" {
		t.Errorf("stored %s, want the on-topic depth-1 page", docs[0].URL)
	}
	if ratio := c.meter.DepthRatio(0); ratio != 0 {
		t.Errorf("depth 0 harvest ratio = %v, want 0", ratio)
	}
	if ratio := c.meter.DepthRatio(1); ratio != 1.0 {
		t.Errorf("depth 1 harvest ratio = %v, want 1.0", ratio)
	}
}

func TestRunDepthEscalationThroughOffTopicChain(t *testing.T) {
	web := &fakeWeb{pages: map[string]fakePage{
		"https://site.test/quantum/portal": page("Science News Portal",
			strings.TrimSpace(strings.Repeat("science news weekly digest roundup ", 8)),
			"https://site.test/quantum/articles"),
		"https://site.test/quantum/articles": page("Article Listing",
			strings.TrimSpace(strings.Repeat("article listing archive index browse ", 8)),
			"https://site.test/quantum/paper"),
		"https://site.test/quantum/paper": page("Quantum Entanglement Paper",
			relevantBody("entanglement qubits decoherence measurement")),
	}}
	cfg := testCrawlerConfig()
	cfg.MaxDepth = 2
	st := store.New()
	c := newTestCrawler(cfg, web, st, nil)

	worked, err := c.Run(context.Background(), quantumPrompt(),
		[]string{"https://site.test/quantum/portal"}, make(map[string]struct{}))
	if err != nil || !worked {
		t.Fatalf("Run = (%v, %v)", worked, err)
	}
	if st.Len() != 1 {
		t.Fatalf("store has %d documents, want 1", st.Len())
	}
	if st.Documents()[0].URL != "https://site.test/quantum/paper" {
		t.Errorf("stored %s, want the depth-2 page", st.Documents()[0].URL)
	}
}

func TestRunNoUsableSeeds(t *testing.T) {
	web := &fakeWeb{pages: map[string]fakePage{}}
	c := newTestCrawler(testCrawlerConfig(), web, store.New(), nil)

	seeds := []string{"not a url", "ftp://site.test/quantum", "https://site.test/cooking"}
	worked, err := c.Run(context.Background(), quantumPrompt(), seeds, make(map[string]struct{}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if worked {
		t.Error("Run reported work with no usable seeds")
	}
	if len(web.fetched) != 0 {
		t.Errorf("fetched %v, want nothing", web.fetched)
	}
}

func TestRunHonorsMaxDepth(t *testing.T) {
	web := &fakeWeb{pages: map[string]fakePage{
		"https://site.test/quantum/a": page("Quantum Research Overview",
			relevantBody("physics entanglement research experiment"),
			"https://site.test/quantum/b"),
		"https://site.test/quantum/b": page("Quantum Computing Guide",
			relevantBody("theory superposition measurement laboratory")),
	}}
	cfg := testCrawlerConfig()
	cfg.MaxDepth = 0
	st := store.New()
	c := newTestCrawler(cfg, web, st, nil)

	if _, err := c.Run(context.Background(), quantumPrompt(),
		[]string{"https://site.test/quantum/a"}, make(map[string]struct{})); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.Len() != 1 {
		t.Errorf("store has %d documents, want 1", st.Len())
	}
	if web.fetchCount("https://site.test/quantum/b") != 0 {
		t.Error("depth 1 page fetched with max depth 0")
	}
}

func TestRunStopsEarlyWhenSatisfied(t *testing.T) {
	web := &fakeWeb{pages: map[string]fakePage{
		"https://site.test/quantum/a": page("Quantum Research Overview",
			relevantBody("physics entanglement research experiment")),
		"https://site.test/quantum/c": page("Quantum Theory Primer",
			relevantBody("theory superposition measurement laboratory")),
	}}
	cfg := testCrawlerConfig()
	cfg.NumResults = 1
	cfg.BatchSize = 1
	st := store.New()
	c := newTestCrawler(cfg, web, st, nil)

	seeds := []string{"https://site.test/quantum/a", "https://site.test/quantum/c"}
	worked, err := c.Run(context.Background(), quantumPrompt(), seeds, make(map[string]struct{}))
	if err != nil || !worked {
		t.Fatalf("Run = (%v, %v)", worked, err)
	}
	if st.Len() != 1 {
		t.Errorf("store has %d documents, want 1", st.Len())
	}
	if web.fetchCount("https://site.test/quantum/c") != 0 {
		t.Error("second seed fetched after the first already satisfied the query")
	}
}

func TestRunSkipsPreVisitedSeeds(t *testing.T) {
	web := &fakeWeb{pages: map[string]fakePage{}}
	c := newTestCrawler(testCrawlerConfig(), web, store.New(), nil)

	visited := map[string]struct{}{
		urlutil.Canonicalize("https://site.test/quantum/a"): {},
	}
	worked, err := c.Run(context.Background(), quantumPrompt(),
		[]string{"https://site.test/quantum/a"}, visited)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if worked {
		t.Error("Run reported work for an already visited seed")
	}
	if len(web.fetched) != 0 {
		t.Errorf("fetched %v, want nothing", web.fetched)
	}
}

func TestRunDeduplicatesIdenticalContent(t *testing.T) {
	dup := page("Quantum Research Overview", relevantBody("physics entanglement research experiment"))
	web := &fakeWeb{pages: map[string]fakePage{
		"https://site.test/quantum/a": dup,
		"https://site.test/quantum/c": dup,
	}}
	st := store.New()
	c := newTestCrawler(testCrawlerConfig(), web, st, nil)

	seeds := []string{"https://site.test/quantum/a", "https://site.test/quantum/c"}
	if _, err := c.Run(context.Background(), quantumPrompt(), seeds, make(map[string]struct{})); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.Len() != 1 {
		t.Errorf("store has %d documents, want 1 after content dedup", st.Len())
	}
}

func TestRunRedirectToVisitedPage(t *testing.T) {
	web := &fakeWeb{pages: map[string]fakePage{
		"https://site.test/quantum/a": page("Quantum Research Overview",
			relevantBody("physics entanglement research experiment")),
		"https://site.test/quantum/old": {redirect: "https://site.test/quantum/a"},
	}}
	cfg := testCrawlerConfig()
	cfg.BatchSize = 1
	st := store.New()
	c := newTestCrawler(cfg, web, st, nil)

	visited := make(map[string]struct{})
	seeds := []string{"https://site.test/quantum/a", "https://site.test/quantum/old"}
	if _, err := c.Run(context.Background(), quantumPrompt(), seeds, visited); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.Len() != 1 {
		t.Errorf("store has %d documents, want 1", st.Len())
	}
	if _, ok := visited[urlutil.Canonicalize("https://site.test/quantum/old")]; !ok {
		t.Error("redirect source not marked visited")
	}
}

func TestRunSnapshotsState(t *testing.T) {
	web := &fakeWeb{pages: map[string]fakePage{
		"https://site.test/quantum/a": page("Quantum Research Overview",
			relevantBody("physics entanglement research experiment")),
	}}
	snap := store.NewSnapshotter(t.TempDir())
	st := store.New()
	c := newTestCrawler(testCrawlerConfig(), web, st, snap)

	if _, err := c.Run(context.Background(), quantumPrompt(),
		[]string{"https://site.test/quantum/a"}, make(map[string]struct{})); err != nil {
		t.Fatalf("Run: %v", err)
	}

	visited, hashes, docs, err := snap.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(visited) != 1 || len(docs) != 1 || len(hashes) != 1 {
		t.Errorf("snapshot = %d visited, %d hashes, %d docs; want 1 each",
			len(visited), len(hashes), len(docs))
	}
}

type countingSaver struct {
	saves int
}

func (s *countingSaver) Save(_, _ []string, _ []types.Document) error {
	s.saves++
	return nil
}

func TestRunSnapshotsOncePerDepth(t *testing.T) {
	web := &fakeWeb{pages: map[string]fakePage{
		"https://site.test/quantum/a": page("Quantum Research Overview",
			relevantBody("physics entanglement research experiment")),
		"https://site.test/quantum/c": page("Quantum Theory Primer",
			relevantBody("theory superposition measurement laboratory")),
	}}
	cfg := testCrawlerConfig()
	cfg.MaxDepth = 0
	cfg.BatchSize = 1
	cfg.SaveFrequency = 1
	saver := &countingSaver{}
	c := newTestCrawler(cfg, web, store.New(), saver)

	seeds := []string{"https://site.test/quantum/a", "https://site.test/quantum/c"}
	if _, err := c.Run(context.Background(), quantumPrompt(), seeds, make(map[string]struct{})); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Two batches at depth 0, but the cadence counts depths: one save
	// when the depth completes plus the terminal save.
	if saver.saves != 2 {
		t.Errorf("saves = %d, want 2", saver.saves)
	}
}

func TestRunReturnsContextError(t *testing.T) {
	web := &fakeWeb{pages: map[string]fakePage{
		"https://site.test/quantum/a": page("Quantum Research Overview",
			relevantBody("physics entanglement research experiment")),
	}}
	c := newTestCrawler(testCrawlerConfig(), web, store.New(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	worked, err := c.Run(ctx, quantumPrompt(), []string{"https://site.test/quantum/a"},
		make(map[string]struct{}))
	if !worked {
		t.Error("Run reported no work after processing a batch")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunSurvivesFetchFailures(t *testing.T) {
	web := &fakeWeb{pages: map[string]fakePage{
		"https://site.test/quantum/down": {fetchErr: &types.FetchError{
			URL: "https://site.test/quantum/down", StatusCode: 503,
			Err: errors.New("unavailable"), Retryable: true,
		}},
		"https://site.test/quantum/a": page("Quantum Research Overview",
			relevantBody("physics entanglement research experiment")),
	}}
	st := store.New()
	c := newTestCrawler(testCrawlerConfig(), web, st, nil)

	seeds := []string{"https://site.test/quantum/down", "https://site.test/quantum/a"}
	worked, err := c.Run(context.Background(), quantumPrompt(), seeds, make(map[string]struct{}))
	if err != nil || !worked {
		t.Fatalf("Run = (%v, %v)", worked, err)
	}
	if st.Len() != 1 {
		t.Errorf("store has %d documents, want 1", st.Len())
	}
}

func TestPipelineThinContent(t *testing.T) {
	web := &fakeWeb{pages: map[string]fakePage{
		"https://site.test/quantum/stub": page("Quantum Stub", "quantum only"),
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := NewPipeline(web, web, 30, logger)

	res := p.Process(context.Background(), "https://site.test/quantum/stub",
		heuristics.NewScorer([]string{"quantum"}))
	if res.err == nil {
		t.Fatal("expected thin content error")
	}
	if !IsThin(res.err) {
		t.Errorf("err = %v, want thin content", res.err)
	}
}
