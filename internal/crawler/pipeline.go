// Package crawler runs the adaptive crawl: batched parallel page
// processing, depth-by-depth frontier expansion with relevance-driven
// early stopping, and the orchestration that turns a user prompt into a
// ranked answer.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/scourhq/scour/internal/heuristics"
	"github.com/scourhq/scour/internal/types"
)

// Fetcher retrieves a page and reports the post-redirect URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*types.FetchResult, error)
}

// Extractor turns raw markup into structured page content.
type Extractor interface {
	Extract(pageURL, rawHTML string) (*types.PageContent, error)
}

// SeedProvider discovers starting URLs for a search phrase.
type SeedProvider interface {
	Seeds(ctx context.Context, phrase string, n int) ([]string, error)
}

// Archiver mirrors admitted documents to external storage.
type Archiver interface {
	Archive(ctx context.Context, doc *types.Document) error
}

// pageResult is what a worker hands back to the scheduler. Workers do
// all the I/O and scoring but touch no shared state; every mutation of
// the visited set, hash set, store, and harvest meter happens on the
// scheduler goroutine when batches join.
type pageResult struct {
	requestURL string
	finalURL   string
	content    *types.PageContent
	score      float64
	err        error
}

// Pipeline is the per-page processing a worker performs: fetch, extract,
// and score.
type Pipeline struct {
	fetcher   Fetcher
	extractor Extractor
	minWords  int
	logger    *slog.Logger
}

// NewPipeline creates a page pipeline.
func NewPipeline(fetcher Fetcher, extractor Extractor, minWords int, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		minWords:  minWords,
		logger:    logger.With("component", "pipeline"),
	}
}

// Process fetches, extracts, and scores one page. The result always
// carries the request URL; on failure err is set and the rest is empty.
func (p *Pipeline) Process(ctx context.Context, rawURL string, scorer *heuristics.Scorer) *pageResult {
	res := &pageResult{requestURL: rawURL, finalURL: rawURL}

	fetched, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		res.err = err
		return res
	}
	res.finalURL = fetched.FinalURL

	content, err := p.extractor.Extract(fetched.FinalURL, fetched.HTML)
	if err != nil {
		res.err = err
		return res
	}
	if content.WordCount < p.minWords {
		res.err = &types.ExtractError{
			URL: fetched.FinalURL,
			Err: fmt.Errorf("%w: %d words", types.ErrThinContent, content.WordCount),
		}
		return res
	}

	res.content = content
	res.score = scorer.Score(content.Title, content.Body, content.WordCount, content.PublishDate)
	return res
}

// IsThin reports whether a page failed processing only because its
// content was too short.
func IsThin(err error) bool {
	return errors.Is(err, types.ErrThinContent)
}
