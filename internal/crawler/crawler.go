package crawler

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/scourhq/scour/internal/config"
	"github.com/scourhq/scour/internal/heuristics"
	"github.com/scourhq/scour/internal/metrics"
	"github.com/scourhq/scour/internal/store"
	"github.com/scourhq/scour/internal/types"
	"github.com/scourhq/scour/internal/urlutil"
)

// StateSaver persists crawl state between and after depths.
type StateSaver interface {
	Save(visited, hashes []string, docs []types.Document) error
}

// Crawler runs the adaptive breadth-first crawl. Workers fetch, extract,
// and score pages in parallel; all shared state is mutated on the
// scheduler goroutine at batch joins.
type Crawler struct {
	cfg      config.CrawlerConfig
	pipeline *Pipeline
	store    *store.Store
	ranker   *store.Ranker
	meter    *metrics.HarvestMeter
	snap     StateSaver
	archive  Archiver
	logger   *slog.Logger
}

// NewCrawler wires a crawler over its collaborators. snap and archive
// may be nil to disable persistence and archiving.
func NewCrawler(cfg config.CrawlerConfig, pipeline *Pipeline, st *store.Store, ranker *store.Ranker,
	meter *metrics.HarvestMeter, snap StateSaver, archive Archiver, logger *slog.Logger) *Crawler {
	return &Crawler{
		cfg:      cfg,
		pipeline: pipeline,
		store:    st,
		ranker:   ranker,
		meter:    meter,
		snap:     snap,
		archive:  archive,
		logger:   logger.With("component", "crawler"),
	}
}

// Run crawls from the seed URLs, deepening until max depth, the frontier
// empties, or enough high-scoring results accumulate. The visited set is
// shared with the caller and extended in place. Returns false when no
// seed survived filtering and no page was processed.
func (c *Crawler) Run(ctx context.Context, pctx *types.PromptContext, seeds []string, visited map[string]struct{}) (bool, error) {
	scorer := heuristics.NewScorer(pctx.Keywords)
	kwFilter := urlutil.NewKeywordFilter(pctx.Keywords, c.cfg.MinKeywordMatches)

	frontier := c.admitToFrontier(seeds, kwFilter, visited)
	if len(frontier) == 0 {
		c.logger.Info("no seed URLs survived filtering, nothing to crawl")
		return false, nil
	}

	for depth := 0; depth <= c.cfg.MaxDepth; depth++ {
		threshold := heuristics.DepthThreshold(
			c.cfg.BaseRelevanceThreshold, c.cfg.DepthThresholdStep, c.cfg.MinRelevanceThreshold, depth)
		c.logger.Info("crawl depth starting",
			"depth", depth,
			"frontier", len(frontier),
			"threshold", threshold,
		)

		var discovered []string
		for start := 0; start < len(frontier); start += c.cfg.BatchSize {
			end := start + c.cfg.BatchSize
			if end > len(frontier) {
				end = len(frontier)
			}
			batch := c.dispatchable(frontier[start:end], visited)
			if len(batch) == 0 {
				continue
			}

			results := c.runBatch(ctx, batch, scorer)
			discovered = append(discovered, c.merge(results, depth, threshold, visited)...)

			if c.satisfied(pctx.QueryText, threshold) {
				c.logger.Info("early stop: enough results above threshold",
					"depth", depth,
					"threshold", threshold,
					"collected", c.store.Len(),
				)
				c.snapshot(visited)
				return true, ctx.Err()
			}
			if err := ctx.Err(); err != nil {
				c.snapshot(visited)
				return true, err
			}
		}

		c.logger.Info("crawl depth finished",
			"depth", depth,
			"harvest_ratio", c.meter.DepthRatio(depth),
			"collected", c.store.Len(),
		)
		if c.cfg.SaveFrequency > 0 && (depth+1)%c.cfg.SaveFrequency == 0 {
			c.snapshot(visited)
		}

		frontier = c.admitToFrontier(discovered, kwFilter, visited)
		if len(frontier) == 0 {
			break
		}
	}

	c.snapshot(visited)
	return true, nil
}

// runBatch processes a batch of URLs with bounded parallelism and waits
// for every worker before returning. Workers never touch shared state.
func (c *Crawler) runBatch(ctx context.Context, batch []string, scorer *heuristics.Scorer) []*pageResult {
	results := make([]*pageResult, len(batch))

	var g errgroup.Group
	g.SetLimit(c.cfg.MaxWorkers)
	for i, rawURL := range batch {
		i, rawURL := i, rawURL
		g.Go(func() error {
			results[i] = c.pipeline.Process(ctx, rawURL, scorer)
			return nil
		})
	}
	g.Wait()
	return results
}

// merge folds a batch's results into the visited set, harvest meter, and
// store, returning the outbound links to consider for the next depth.
// This is the only place crawl state changes.
func (c *Crawler) merge(results []*pageResult, depth int, threshold float64, visited map[string]struct{}) []string {
	var discovered []string
	for _, res := range results {
		requested := urlutil.Canonicalize(res.requestURL)
		visited[requested] = struct{}{}

		if res.err != nil {
			var fe *types.FetchError
			switch {
			case IsThin(res.err):
				c.logger.Debug("page skipped: thin content", "url", res.requestURL)
			case errors.As(res.err, &fe):
				c.logger.Debug("page fetch failed", "url", res.requestURL, "error", res.err)
			default:
				c.logger.Debug("page processing failed", "url", res.requestURL, "error", res.err)
			}
			continue
		}

		// A redirect may land on a page another worker already handled.
		final := urlutil.Canonicalize(res.finalURL)
		if final != requested {
			if _, seen := visited[final]; seen {
				c.logger.Debug("redirect target already visited", "url", res.requestURL, "final", res.finalURL)
				continue
			}
			visited[final] = struct{}{}
		}

		// Links propagate even from low-scoring pages: an off-topic hub
		// can still lead to on-topic content a level deeper.
		discovered = append(discovered, res.content.OutboundLinks...)

		relevant := res.score >= threshold
		c.meter.RecordPage(depth, relevant)
		if !relevant {
			continue
		}

		doc := &types.Document{
			URL:            res.finalURL,
			Domain:         urlutil.Hostname(res.finalURL),
			Title:          res.content.Title,
			Body:           res.content.Body,
			WordCount:      res.content.WordCount,
			PublishDate:    res.content.PublishDate,
			HeuristicScore: res.score,
			OutboundLinks:  res.content.OutboundLinks,
		}
		switch err := c.store.Admit(doc); {
		case err == nil:
			c.logger.Debug("document admitted", "url", doc.URL, "score", res.score)
			if c.archive != nil {
				if err := c.archive.Archive(context.Background(), doc); err != nil {
					c.logger.Warn("archive failed", "url", doc.URL, "error", err)
				}
			}
		case errors.Is(err, types.ErrDuplicate):
			c.logger.Debug("duplicate content skipped", "url", doc.URL)
		default:
			c.logger.Warn("document rejected", "url", doc.URL, "error", err)
		}
	}
	return discovered
}

// admitToFrontier filters candidate URLs down to the ones worth
// fetching: valid, matching the keyword pre-filter, not yet visited,
// de-duplicated by canonical form.
func (c *Crawler) admitToFrontier(candidates []string, kwFilter *urlutil.KeywordFilter, visited map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(candidates))
	var frontier []string
	for _, rawURL := range candidates {
		if !urlutil.IsValid(rawURL) || !kwFilter.Admit(rawURL) {
			continue
		}
		canonical := urlutil.Canonicalize(rawURL)
		if _, ok := visited[canonical]; ok {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		frontier = append(frontier, rawURL)
	}
	return frontier
}

// dispatchable drops batch entries that became visited since the
// frontier was assembled.
func (c *Crawler) dispatchable(batch []string, visited map[string]struct{}) []string {
	out := make([]string, 0, len(batch))
	for _, rawURL := range batch {
		if _, ok := visited[urlutil.Canonicalize(rawURL)]; ok {
			continue
		}
		out = append(out, rawURL)
	}
	return out
}

// satisfied reports whether the store already holds a full result set
// scoring at or above the depth threshold.
func (c *Crawler) satisfied(query string, threshold float64) bool {
	results := c.ranker.Rank(c.store.Documents(), query, c.cfg.NumResults)
	if len(results) < c.cfg.NumResults {
		return false
	}
	for _, res := range results {
		if res.WeightedScore < threshold {
			return false
		}
	}
	return true
}

// snapshot persists visited URLs, content hashes, and documents. Save
// failures are logged, never fatal.
func (c *Crawler) snapshot(visited map[string]struct{}) {
	if c.snap == nil {
		return
	}
	urls := make([]string, 0, len(visited))
	for u := range visited {
		urls = append(urls, u)
	}
	if err := c.snap.Save(urls, c.store.Hashes(), c.store.Documents()); err != nil {
		c.logger.Warn("state snapshot failed", "error", err)
	}
}
