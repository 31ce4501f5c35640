package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and CLI flags.
// Priority (highest to lowest): CLI flags > env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	// Set defaults from struct
	setDefaults(v, cfg)

	// Environment variable support
	v.SetEnvPrefix("SCOUR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Search default locations
		v.SetConfigName("scour")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".scour"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("crawler.max_depth", cfg.Crawler.MaxDepth)
	v.SetDefault("crawler.max_workers", cfg.Crawler.MaxWorkers)
	v.SetDefault("crawler.batch_size", cfg.Crawler.BatchSize)
	v.SetDefault("crawler.num_results", cfg.Crawler.NumResults)
	v.SetDefault("crawler.num_seed_urls", cfg.Crawler.NumSeedURLs)
	v.SetDefault("crawler.relevance_threshold", cfg.Crawler.BaseRelevanceThreshold)
	v.SetDefault("crawler.depth_threshold_step", cfg.Crawler.DepthThresholdStep)
	v.SetDefault("crawler.min_relevance_threshold", cfg.Crawler.MinRelevanceThreshold)
	v.SetDefault("crawler.min_keyword_matches", cfg.Crawler.MinKeywordMatches)
	v.SetDefault("crawler.min_page_words", cfg.Crawler.MinPageWords)
	v.SetDefault("crawler.heuristic_weight", cfg.Crawler.HeuristicWeight)
	v.SetDefault("crawler.cosine_weight", cfg.Crawler.CosineWeight)
	v.SetDefault("crawler.save_frequency", cfg.Crawler.SaveFrequency)

	v.SetDefault("fetcher.type", cfg.Fetcher.Type)
	v.SetDefault("fetcher.request_timeout", cfg.Fetcher.RequestTimeout)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.user_agent", cfg.Fetcher.UserAgent)

	v.SetDefault("store.state_dir", cfg.Store.StateDir)
	v.SetDefault("store.mongo_uri", cfg.Store.MongoURI)
	v.SetDefault("store.mongo_database", cfg.Store.MongoDatabase)
	v.SetDefault("store.mongo_collection", cfg.Store.MongoCollection)

	v.SetDefault("search.engines", cfg.Search.Engines)
	v.SetDefault("search.timeout", cfg.Search.Timeout)

	v.SetDefault("llm.enabled", cfg.LLM.Enabled)
	v.SetDefault("llm.provider", cfg.LLM.Provider)
	v.SetDefault("llm.model", cfg.LLM.Model)
	v.SetDefault("llm.endpoint", cfg.LLM.Endpoint)
	v.SetDefault("llm.api_key", cfg.LLM.APIKey)
	v.SetDefault("llm.timeout", cfg.LLM.Timeout)
	v.SetDefault("llm.expansion_keywords", cfg.LLM.ExpansionKeywords)
	v.SetDefault("llm.evaluate_results", cfg.LLM.EvaluateResults)

	v.SetDefault("api.addr", cfg.API.Addr)
	v.SetDefault("api.read_timeout", cfg.API.ReadTimeout)
	v.SetDefault("api.write_timeout", cfg.API.WriteTimeout)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}
