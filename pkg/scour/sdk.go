// Package scour provides a public SDK for embedding Scour as a library.
//
// Example usage:
//
//	client, err := scour.New(
//	    scour.WithMaxDepth(2),
//	    scour.WithNumResults(5),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	resp, err := client.Query(ctx, "how do solid state batteries work?")
package scour

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/scourhq/scour/internal/ai"
	"github.com/scourhq/scour/internal/config"
	"github.com/scourhq/scour/internal/crawler"
	"github.com/scourhq/scour/internal/extractor"
	"github.com/scourhq/scour/internal/fetcher"
	"github.com/scourhq/scour/internal/search"
	"github.com/scourhq/scour/internal/store"
	"github.com/scourhq/scour/internal/types"
)

// Client is the high-level API for using Scour as a library.
type Client struct {
	cfg     *config.Config
	orch    *crawler.Orchestrator
	logger  *slog.Logger
	closers []func() error
}

// Option configures the client.
type Option func(*config.Config)

// WithConfig replaces the entire configuration.
func WithConfig(cfg *config.Config) Option {
	return func(c *config.Config) { *c = *cfg }
}

// WithMaxDepth sets the maximum crawl depth.
func WithMaxDepth(depth int) Option {
	return func(c *config.Config) { c.Crawler.MaxDepth = depth }
}

// WithNumResults sets how many results a query returns.
func WithNumResults(n int) Option {
	return func(c *config.Config) { c.Crawler.NumResults = n }
}

// WithStateDir sets where crawl state is persisted. Empty disables
// persistence.
func WithStateDir(dir string) Option {
	return func(c *config.Config) { c.Store.StateDir = dir }
}

// WithBrowserFetcher switches page fetching to a headless browser.
func WithBrowserFetcher() Option {
	return func(c *config.Config) { c.Fetcher.Type = "browser" }
}

// WithLLM enables LLM query expansion and answer synthesis.
func WithLLM(provider, model, endpoint string) Option {
	return func(c *config.Config) {
		c.LLM.Enabled = true
		c.LLM.Provider = provider
		c.LLM.Model = model
		c.LLM.Endpoint = endpoint
	}
}

// New creates a client from the default configuration plus options.
func New(opts ...Option) (*Client, error) {
	cfg := config.DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	c := &Client{cfg: cfg, logger: logger}

	var fetch crawler.Fetcher
	switch cfg.Fetcher.Type {
	case "browser":
		bf, err := fetcher.NewBrowserFetcher(cfg, logger, fetcher.WithStealth())
		if err != nil {
			return nil, fmt.Errorf("create browser fetcher: %w", err)
		}
		fetch = bf
		c.closers = append(c.closers, bf.Close)
	default:
		hf := fetcher.NewHTTPFetcher(cfg, logger)
		fetch = hf
		c.closers = append(c.closers, hf.Close)
	}

	pipeline := crawler.NewPipeline(fetch, extractor.New(logger), cfg.Crawler.MinPageWords, logger)
	orchOpts := []crawler.OrchestratorOption{
		crawler.WithSeedProvider(search.NewProvider(cfg, logger)),
	}
	if cfg.Store.StateDir != "" {
		orchOpts = append(orchOpts, crawler.WithSnapshotter(store.NewSnapshotter(cfg.Store.StateDir)))
	}
	if cfg.Store.MongoURI != "" {
		archive, err := store.NewMongoArchive(cfg.Store.MongoURI, cfg.Store.MongoDatabase, cfg.Store.MongoCollection, logger)
		if err != nil {
			return nil, fmt.Errorf("connect mongo archive: %w", err)
		}
		orchOpts = append(orchOpts, crawler.WithArchiver(archive))
		c.closers = append(c.closers, archive.Close)
	}
	if cfg.LLM.Enabled {
		llm := ai.NewClient(&cfg.LLM, logger)
		orchOpts = append(orchOpts, crawler.WithLLM(
			ai.NewQueryEnricher(llm, cfg.LLM.ExpansionKeywords, logger),
			ai.NewAnswerSynthesizer(llm, logger),
			ai.NewJudge(llm, logger),
		))
	}

	c.orch = crawler.NewOrchestrator(cfg, store.New(), pipeline, logger, orchOpts...)
	return c, nil
}

// QueryOption adjusts a single query.
type QueryOption func(*types.CrawlRequest)

// WithSeedURLs adds seed URLs to the crawl.
func WithSeedURLs(urls ...string) QueryOption {
	return func(r *types.CrawlRequest) { r.URLs = append(r.URLs, urls...) }
}

// Strict restricts the crawl to the given seed URLs, skipping search
// engines.
func Strict() QueryOption {
	return func(r *types.CrawlRequest) { r.Strict = true }
}

// ForceCrawl crawls even when cached content already answers the query.
func ForceCrawl() QueryOption {
	return func(r *types.CrawlRequest) { r.ForceCrawl = true }
}

// Query crawls as needed and returns ranked results for the prompt.
func (c *Client) Query(ctx context.Context, prompt string, opts ...QueryOption) (*types.CrawlResponse, error) {
	req := types.CrawlRequest{Prompt: prompt, UseLLM: c.cfg.LLM.Enabled}
	for _, opt := range opts {
		opt(&req)
	}
	if req.Strict && len(req.URLs) == 0 {
		return nil, fmt.Errorf("strict query needs at least one seed URL")
	}
	return c.orch.CrawlAndQuery(ctx, req), nil
}

// VisitedCount returns how many URLs the client has crawled.
func (c *Client) VisitedCount() int {
	return c.orch.VisitedCount()
}

// Close releases the fetcher and any archive connection.
func (c *Client) Close() {
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			c.logger.Warn("close failed", "error", err)
		}
	}
}
