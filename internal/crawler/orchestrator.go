package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/scourhq/scour/internal/config"
	"github.com/scourhq/scour/internal/keywords"
	"github.com/scourhq/scour/internal/metrics"
	"github.com/scourhq/scour/internal/store"
	"github.com/scourhq/scour/internal/types"
)

// PromptExpander widens a prompt into search keyword phrases.
type PromptExpander interface {
	Expand(ctx context.Context, prompt string) ([]string, error)
}

// AnswerSynthesizer writes a grounded answer from ranked results.
type AnswerSynthesizer interface {
	Generate(ctx context.Context, prompt string, results []types.ScoredDocument) (string, error)
}

// ResultJudge scores retrieval quality and answer quality.
type ResultJudge interface {
	Evaluate(ctx context.Context, prompt, answer string, results []types.ScoredDocument) (map[string]any, error)
}

// Orchestrator runs the full crawl-and-query flow: prompt enrichment,
// cache check, crawl, ranking, optional answer synthesis and judging,
// and response assembly. Requests are serialized; the store and visited
// set persist across them.
type Orchestrator struct {
	mu       sync.Mutex
	cfg      *config.Config
	store    *store.Store
	ranker   *store.Ranker
	snap     *store.Snapshotter
	archive  Archiver
	pipeline *Pipeline
	search   SeedProvider
	expander PromptExpander
	synth    AnswerSynthesizer
	judge    ResultJudge
	visited  map[string]struct{}
	logger   *slog.Logger
}

// OrchestratorOption configures optional collaborators.
type OrchestratorOption func(*Orchestrator)

// WithSeedProvider sets the search federation used for seed discovery.
func WithSeedProvider(sp SeedProvider) OrchestratorOption {
	return func(o *Orchestrator) { o.search = sp }
}

// WithLLM sets the optional LLM pipeline steps. Any of them may be nil.
func WithLLM(expander PromptExpander, synth AnswerSynthesizer, judge ResultJudge) OrchestratorOption {
	return func(o *Orchestrator) {
		o.expander = expander
		o.synth = synth
		o.judge = judge
	}
}

// WithArchiver sets the external document archive.
func WithArchiver(a Archiver) OrchestratorOption {
	return func(o *Orchestrator) { o.archive = a }
}

// WithSnapshotter sets crawl state persistence and loads any previous
// state into the store and visited set.
func WithSnapshotter(snap *store.Snapshotter) OrchestratorOption {
	return func(o *Orchestrator) { o.snap = snap }
}

// NewOrchestrator assembles an orchestrator. When a snapshotter is
// configured, previously persisted state is restored; a corrupt
// snapshot logs a warning and starts empty.
func NewOrchestrator(cfg *config.Config, st *store.Store, pipeline *Pipeline, logger *slog.Logger, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		store:    st,
		ranker:   store.NewRanker(cfg.Crawler.HeuristicWeight, cfg.Crawler.CosineWeight),
		pipeline: pipeline,
		visited:  make(map[string]struct{}),
		logger:   logger.With("component", "orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.snap != nil {
		visited, hashes, docs, err := o.snap.Load()
		if err != nil {
			o.logger.Warn("state restore failed, starting empty", "error", err)
		} else if len(docs) > 0 || len(visited) > 0 {
			o.store.Import(docs, hashes)
			for _, u := range visited {
				o.visited[u] = struct{}{}
			}
			o.logger.Info("state restored", "documents", len(docs), "visited", len(visited))
		}
	}
	return o
}

// VisitedCount returns the size of the persistent visited set.
func (o *Orchestrator) VisitedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.visited)
}

// CrawlAndQuery serves one request end to end. Phase failures degrade
// the response instead of aborting it: the response status reflects
// whether anything useful was produced.
func (o *Orchestrator) CrawlAndQuery(ctx context.Context, req types.CrawlRequest) *types.CrawlResponse {
	o.mu.Lock()
	defer o.mu.Unlock()

	timer := metrics.NewTimer()
	timer.Start()
	meter := metrics.NewHarvestMeter()

	resp := &types.CrawlResponse{Prompt: req.Prompt, LLMResponse: "N/A"}
	if strings.TrimSpace(req.Prompt) == "" {
		resp.Status = types.StatusError
		resp.Errors = append(resp.Errors, "validation: user_prompt is required")
		timer.Stop()
		resp.EvaluationMetrics.TimeMetrics = timer.Report()
		resp.EvaluationMetrics.HarvestMetrics = meter.Report()
		return resp
	}
	eff := o.effectiveConfig(req)

	pctx := o.buildPromptContext(ctx, req.Prompt, resp)

	fromCache := false
	seedsUsed := 0
	if !req.ForceCrawl {
		if results, hit := o.checkCache(pctx, eff, meter); hit {
			resp.Results = results
			fromCache = true
		}
	}

	if !fromCache {
		var degraded bool
		seedsUsed, degraded = o.crawl(ctx, req, pctx, eff, meter, resp)
		resp.Results = o.ranker.Rank(o.store.Documents(), pctx.QueryText, eff.NumResults)
		if seedsUsed == 0 && !degraded {
			// Genuinely nothing to do; whatever the store held serves the
			// query. A failed crawl is never reported as a cache hit.
			fromCache = true
		}
	}

	o.synthesize(ctx, req, pctx, resp)

	resp.Metadata.URLs = types.URLMetadata{
		VisitedTotal: len(o.visited),
		SeedURLsUsed: seedsUsed,
	}
	resp.Metadata.ContentCollectedTotal = o.store.Len()
	resp.Metadata.FromCache = fromCache

	timer.Stop()
	resp.EvaluationMetrics.TimeMetrics = timer.Report()
	resp.EvaluationMetrics.HarvestMetrics = meter.Report()

	resp.Status = reduceStatus(resp)
	o.logger.Info("request served",
		"status", resp.Status,
		"results", len(resp.Results),
		"from_cache", fromCache,
		"duration", timer.Duration(),
	)
	return resp
}

// effectiveConfig applies per-request overrides to the crawler config.
func (o *Orchestrator) effectiveConfig(req types.CrawlRequest) config.CrawlerConfig {
	eff := o.cfg.Crawler
	if req.NumResults > 0 {
		eff.NumResults = req.NumResults
	}
	if req.NumSeedURLs > 0 {
		eff.NumSeedURLs = req.NumSeedURLs
	}
	if req.MaxDepth != nil && *req.MaxDepth >= 0 {
		eff.MaxDepth = *req.MaxDepth
	}
	if req.BaseThreshold != nil && *req.BaseThreshold >= 0 && *req.BaseThreshold <= 1 {
		eff.BaseRelevanceThreshold = *req.BaseThreshold
		if eff.MinRelevanceThreshold > eff.BaseRelevanceThreshold {
			eff.MinRelevanceThreshold = eff.BaseRelevanceThreshold
		}
	}
	return eff
}

// buildPromptContext expands the prompt when an expander is available
// and derives the keyword set. Expansion failure falls back to the raw
// prompt.
func (o *Orchestrator) buildPromptContext(ctx context.Context, prompt string, resp *types.CrawlResponse) *types.PromptContext {
	var phrases []string
	if o.expander != nil {
		expanded, err := o.expander.Expand(ctx, prompt)
		if err != nil {
			o.recordPhaseError(resp, "llm", fmt.Errorf("prompt expansion: %w", err))
		} else {
			phrases = expanded
		}
	}

	var kws []string
	if len(phrases) > 0 {
		kws = keywords.NormalizePhrases(phrases)
	} else {
		kws = keywords.Normalize(prompt)
	}
	return types.NewPromptContext(prompt, phrases, kws)
}

// checkCache reports whether the current store already answers the
// query: a full result set all scoring at or above the base threshold.
func (o *Orchestrator) checkCache(pctx *types.PromptContext, eff config.CrawlerConfig, meter *metrics.HarvestMeter) ([]types.ScoredDocument, bool) {
	results := o.ranker.Rank(o.store.Documents(), pctx.QueryText, eff.NumResults)
	if len(results) < eff.NumResults {
		return nil, false
	}
	for _, res := range results {
		if res.WeightedScore < eff.BaseRelevanceThreshold {
			return nil, false
		}
	}
	for range results {
		meter.RecordCache(true)
	}
	o.logger.Info("cache hit", "results", len(results))
	return results, true
}

// crawl gathers seeds and runs the crawler, returning how many seed
// URLs entered the crawl and whether the phase degraded. Zero seeds
// with no degradation means there was genuinely nothing to do.
func (o *Orchestrator) crawl(ctx context.Context, req types.CrawlRequest, pctx *types.PromptContext,
	eff config.CrawlerConfig, meter *metrics.HarvestMeter, resp *types.CrawlResponse) (int, bool) {

	degraded := false
	seeds := append([]string(nil), req.URLs...)
	if !req.Strict && o.search != nil {
		found, err := o.search.Seeds(ctx, pctx.SearchPhrase, eff.NumSeedURLs)
		if err != nil {
			o.recordPhaseError(resp, "crawl", fmt.Errorf("seed search: %w", err))
			degraded = true
		}
		seeds = append(seeds, found...)
	}
	if len(seeds) == 0 {
		if !degraded {
			o.recordPhaseError(resp, "crawl", types.ErrNoSeeds)
		}
		return 0, degraded
	}

	var saver StateSaver
	if o.snap != nil {
		saver = o.snap
	}
	c := NewCrawler(eff, o.pipeline, o.store, o.ranker, meter, saver, o.archive, o.logger)
	worked, err := c.Run(ctx, pctx, seeds, o.visited)
	if err != nil {
		o.recordPhaseError(resp, "crawl", err)
		degraded = true
	}
	if !worked {
		return 0, degraded
	}
	return len(seeds), degraded
}

// synthesize runs the optional answer and judging steps.
func (o *Orchestrator) synthesize(ctx context.Context, req types.CrawlRequest, pctx *types.PromptContext,
	resp *types.CrawlResponse) {
	useLLM := req.UseLLM || o.cfg.LLM.Enabled
	if !useLLM || o.synth == nil || len(resp.Results) == 0 {
		return
	}

	answer, err := o.synth.Generate(ctx, pctx.OriginalText, resp.Results)
	if err != nil {
		o.recordPhaseError(resp, "llm", err)
		resp.LLMResponse = err.Error()
		return
	}
	resp.LLMResponse = answer

	if o.judge != nil && o.cfg.LLM.EvaluateResults {
		scores, err := o.judge.Evaluate(ctx, pctx.OriginalText, answer, resp.Results)
		if err != nil {
			o.recordPhaseError(resp, "evaluation", err)
			return
		}
		resp.EvaluationMetrics.GenAIScoring = scores
	}
}

// recordPhaseError appends the error to the response and fills the
// matching metadata field.
func (o *Orchestrator) recordPhaseError(resp *types.CrawlResponse, phase string, err error) {
	o.logger.Warn("phase degraded", "phase", phase, "error", err)
	resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", phase, err))
	switch phase {
	case "cache":
		resp.Metadata.CacheError = err.Error()
	case "crawl":
		resp.Metadata.CrawlError = err.Error()
	case "llm":
		resp.Metadata.LLMError = err.Error()
	case "metadata":
		resp.Metadata.MetadataError = err.Error()
	case "evaluation":
		resp.Metadata.EvaluationError = err.Error()
	}
}

// reduceStatus maps the accumulated phase errors to the response
// status. Phase failures only ever degrade a valid request to
// partial_success; the error status is reserved for invalid input.
func reduceStatus(resp *types.CrawlResponse) string {
	if len(resp.Errors) == 0 {
		return types.StatusSuccess
	}
	return types.StatusPartialSuccess
}
