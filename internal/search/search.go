// Package search discovers seed URLs for a query by federating web
// search engines and merging their results by weighted occurrence.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/scourhq/scour/internal/config"
	"github.com/scourhq/scour/internal/types"
)

// Engine returns result URLs for a search phrase, best first.
type Engine interface {
	Name() string
	Weight() float64
	Search(ctx context.Context, phrase string, limit int) ([]string, error)
}

// Provider federates engines and merges their results. A URL surfaced
// by several engines accumulates each engine's weight, so agreement
// pushes it up the seed list.
type Provider struct {
	engines []Engine
	logger  *slog.Logger
}

// NewProvider builds a provider from the configured engine names.
func NewProvider(cfg *config.Config, logger *slog.Logger) *Provider {
	client := &http.Client{Timeout: cfg.Search.Timeout}
	userAgent := cfg.Fetcher.UserAgent

	var engines []Engine
	for _, name := range cfg.Search.Engines {
		switch name {
		case "bing":
			engines = append(engines, &bingEngine{client: client, userAgent: userAgent})
		case "duckduckgo":
			engines = append(engines, &duckDuckGoEngine{client: client, userAgent: userAgent})
		}
	}
	return &Provider{
		engines: engines,
		logger:  logger.With("component", "search"),
	}
}

// NewProviderWithEngines builds a provider over explicit engines.
func NewProviderWithEngines(logger *slog.Logger, engines ...Engine) *Provider {
	return &Provider{engines: engines, logger: logger.With("component", "search")}
}

// Seeds returns up to n seed URLs for the phrase. An engine failure is
// logged and skipped; only all engines failing is an error.
func (p *Provider) Seeds(ctx context.Context, phrase string, n int) ([]string, error) {
	if n <= 0 || len(p.engines) == 0 {
		return nil, nil
	}

	type candidate struct {
		url    string
		weight float64
		order  int
	}
	merged := make(map[string]*candidate)
	succeeded := 0

	for _, engine := range p.engines {
		urls, err := engine.Search(ctx, phrase, n*2)
		if err != nil {
			p.logger.Warn("search engine failed", "engine", engine.Name(), "error", err)
			continue
		}
		succeeded++
		for _, u := range urls {
			if c, ok := merged[u]; ok {
				c.weight += engine.Weight()
				continue
			}
			merged[u] = &candidate{url: u, weight: engine.Weight(), order: len(merged)}
		}
	}
	if succeeded == 0 {
		return nil, fmt.Errorf("all %d search engines failed", len(p.engines))
	}

	ranked := make([]*candidate, 0, len(merged))
	for _, c := range merged {
		ranked = append(ranked, c)
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].weight != ranked[b].weight {
			return ranked[a].weight > ranked[b].weight
		}
		return ranked[a].order < ranked[b].order
	})

	if n > len(ranked) {
		n = len(ranked)
	}
	seeds := make([]string, n)
	for i := 0; i < n; i++ {
		seeds[i] = ranked[i].url
	}
	p.logger.Debug("seed search complete", "phrase", phrase, "candidates", len(merged), "seeds", len(seeds))
	return seeds, nil
}

// --- Bing ---

// bingEngine scrapes the Bing HTML results page.
type bingEngine struct {
	client    *http.Client
	userAgent string
}

func (e *bingEngine) Name() string    { return "bing" }
func (e *bingEngine) Weight() float64 { return 2 }

func (e *bingEngine) Search(ctx context.Context, phrase string, limit int) ([]string, error) {
	return e.searchAt(ctx, "https://www.bing.com/search?q="+url.QueryEscape(phrase), limit)
}

func (e *bingEngine) searchAt(ctx context.Context, endpoint string, limit int) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &types.FetchError{URL: endpoint, Err: err, Retryable: true}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &types.FetchError{URL: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse bing results: %w", err)
	}

	var urls []string
	doc.Find("li.b_algo h2 a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if ok && strings.HasPrefix(href, "http") {
			urls = append(urls, href)
		}
		return len(urls) < limit
	})
	return urls, nil
}

// --- DuckDuckGo ---

// duckDuckGoEngine queries the DuckDuckGo Instant Answer API.
type duckDuckGoEngine struct {
	client    *http.Client
	userAgent string
}

func (e *duckDuckGoEngine) Name() string    { return "duckduckgo" }
func (e *duckDuckGoEngine) Weight() float64 { return 2 }

type ddgResponse struct {
	AbstractURL   string     `json:"AbstractURL"`
	Results       []ddgTopic `json:"Results"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

type ddgTopic struct {
	FirstURL string     `json:"FirstURL"`
	Topics   []ddgTopic `json:"Topics"`
}

func (e *duckDuckGoEngine) Search(ctx context.Context, phrase string, limit int) ([]string, error) {
	return e.searchAt(ctx, "https://api.duckduckgo.com/?format=json&no_html=1&q="+url.QueryEscape(phrase), limit)
}

func (e *duckDuckGoEngine) searchAt(ctx context.Context, endpoint string, limit int) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &types.FetchError{URL: endpoint, Err: err, Retryable: true}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &types.FetchError{URL: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	var parsed ddgResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse duckduckgo response: %w", err)
	}

	var urls []string
	if parsed.AbstractURL != "" {
		urls = append(urls, parsed.AbstractURL)
	}
	urls = append(urls, collectTopicURLs(parsed.Results, limit-len(urls))...)
	urls = append(urls, collectTopicURLs(parsed.RelatedTopics, limit-len(urls))...)
	if len(urls) > limit {
		urls = urls[:limit]
	}
	return urls, nil
}

// collectTopicURLs flattens nested topic groups in order.
func collectTopicURLs(topics []ddgTopic, limit int) []string {
	if limit <= 0 {
		return nil
	}
	var urls []string
	for _, topic := range topics {
		if len(urls) >= limit {
			break
		}
		if topic.FirstURL != "" {
			urls = append(urls, topic.FirstURL)
			continue
		}
		urls = append(urls, collectTopicURLs(topic.Topics, limit-len(urls))...)
	}
	return urls
}
