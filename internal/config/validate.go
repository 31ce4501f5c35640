package config

import (
	"fmt"
	"math"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	c := cfg.Crawler
	if c.MaxDepth < 0 {
		return fmt.Errorf("crawler.max_depth must be >= 0, got %d", c.MaxDepth)
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("crawler.max_workers must be >= 1, got %d", c.MaxWorkers)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("crawler.batch_size must be >= 1, got %d", c.BatchSize)
	}
	if c.NumResults < 1 {
		return fmt.Errorf("crawler.num_results must be >= 1, got %d", c.NumResults)
	}
	if c.NumSeedURLs < 0 {
		return fmt.Errorf("crawler.num_seed_urls must be >= 0, got %d", c.NumSeedURLs)
	}
	if c.BaseRelevanceThreshold < 0 || c.BaseRelevanceThreshold > 1 {
		return fmt.Errorf("crawler.relevance_threshold must be in [0,1], got %v", c.BaseRelevanceThreshold)
	}
	if c.MinRelevanceThreshold < 0 || c.MinRelevanceThreshold > 1 {
		return fmt.Errorf("crawler.min_relevance_threshold must be in [0,1], got %v", c.MinRelevanceThreshold)
	}
	if c.MinRelevanceThreshold > c.BaseRelevanceThreshold {
		return fmt.Errorf("crawler.min_relevance_threshold (%v) must not exceed crawler.relevance_threshold (%v)",
			c.MinRelevanceThreshold, c.BaseRelevanceThreshold)
	}
	if c.DepthThresholdStep < 0 {
		return fmt.Errorf("crawler.depth_threshold_step must be >= 0, got %v", c.DepthThresholdStep)
	}
	if c.MinKeywordMatches < 1 {
		return fmt.Errorf("crawler.min_keyword_matches must be >= 1, got %d", c.MinKeywordMatches)
	}
	if math.Abs(c.HeuristicWeight+c.CosineWeight-1.0) > 1e-9 {
		return fmt.Errorf("crawler heuristic_weight + cosine_weight must sum to 1, got %v",
			c.HeuristicWeight+c.CosineWeight)
	}
	if c.SaveFrequency < 0 {
		return fmt.Errorf("crawler.save_frequency must be >= 0, got %d", c.SaveFrequency)
	}

	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}

	for _, engine := range cfg.Search.Engines {
		if engine != "bing" && engine != "duckduckgo" {
			return fmt.Errorf("search.engines entry %q is not supported (valid: bing, duckduckgo)", engine)
		}
	}

	if cfg.LLM.Enabled {
		switch cfg.LLM.Provider {
		case "ollama", "openai", "custom":
		default:
			return fmt.Errorf("llm.provider must be ollama/openai/custom, got %q", cfg.LLM.Provider)
		}
		if cfg.LLM.ExpansionKeywords < 1 {
			return fmt.Errorf("llm.expansion_keywords must be >= 1, got %d", cfg.LLM.ExpansionKeywords)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}
