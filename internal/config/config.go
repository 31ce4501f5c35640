package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for Scour.
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler" yaml:"crawler"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Store   StoreConfig   `mapstructure:"store"   yaml:"store"`
	Search  SearchConfig  `mapstructure:"search"  yaml:"search"`
	LLM     LLMConfig     `mapstructure:"llm"     yaml:"llm"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// CrawlerConfig controls the adaptive crawl loop.
type CrawlerConfig struct {
	MaxDepth               int     `mapstructure:"max_depth"               yaml:"max_depth"`
	MaxWorkers             int     `mapstructure:"max_workers"             yaml:"max_workers"`
	BatchSize              int     `mapstructure:"batch_size"              yaml:"batch_size"`
	NumResults             int     `mapstructure:"num_results"             yaml:"num_results"`
	NumSeedURLs            int     `mapstructure:"num_seed_urls"           yaml:"num_seed_urls"`
	BaseRelevanceThreshold float64 `mapstructure:"relevance_threshold"     yaml:"relevance_threshold"`
	DepthThresholdStep     float64 `mapstructure:"depth_threshold_step"    yaml:"depth_threshold_step"`
	MinRelevanceThreshold  float64 `mapstructure:"min_relevance_threshold" yaml:"min_relevance_threshold"`
	MinKeywordMatches      int     `mapstructure:"min_keyword_matches"     yaml:"min_keyword_matches"`
	MinPageWords           int     `mapstructure:"min_page_words"          yaml:"min_page_words"`
	HeuristicWeight        float64 `mapstructure:"heuristic_weight"        yaml:"heuristic_weight"`
	CosineWeight           float64 `mapstructure:"cosine_weight"           yaml:"cosine_weight"`
	SaveFrequency          int     `mapstructure:"save_frequency"          yaml:"save_frequency"`
}

// FetcherConfig controls page fetching.
type FetcherConfig struct {
	Type           string        `mapstructure:"type"            yaml:"type"` // http, browser
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	MaxRedirects   int           `mapstructure:"max_redirects"   yaml:"max_redirects"`
	MaxBodySize    int64         `mapstructure:"max_body_size"   yaml:"max_body_size"`
	UserAgent      string        `mapstructure:"user_agent"      yaml:"user_agent"`
}

// StoreConfig controls persistence of the content store.
type StoreConfig struct {
	StateDir        string `mapstructure:"state_dir"        yaml:"state_dir"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// SearchConfig controls seed URL discovery.
type SearchConfig struct {
	Engines []string      `mapstructure:"engines" yaml:"engines"` // bing, duckduckgo
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// LLMConfig controls query enrichment, answer synthesis, and judging.
type LLMConfig struct {
	Enabled           bool          `mapstructure:"enabled"            yaml:"enabled"`
	Provider          string        `mapstructure:"provider"           yaml:"provider"` // ollama, openai, custom
	Model             string        `mapstructure:"model"              yaml:"model"`
	Endpoint          string        `mapstructure:"endpoint"           yaml:"endpoint"`
	APIKey            string        `mapstructure:"api_key"            yaml:"api_key"`
	Timeout           time.Duration `mapstructure:"timeout"            yaml:"timeout"`
	ExpansionKeywords int           `mapstructure:"expansion_keywords" yaml:"expansion_keywords"`
	EvaluateResults   bool          `mapstructure:"evaluate_results"   yaml:"evaluate_results"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Addr         string        `mapstructure:"addr"          yaml:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"  yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Crawler: CrawlerConfig{
			MaxDepth:               3,
			MaxWorkers:             8,
			BatchSize:              20,
			NumResults:             3,
			NumSeedURLs:            5,
			BaseRelevanceThreshold: 0.4,
			DepthThresholdStep:     0.05,
			MinRelevanceThreshold:  0.15,
			MinKeywordMatches:      1,
			MinPageWords:           30,
			HeuristicWeight:        0.6,
			CosineWeight:           0.4,
			SaveFrequency:          3,
		},
		Fetcher: FetcherConfig{
			Type:           "http",
			RequestTimeout: 10 * time.Second,
			MaxRedirects:   10,
			MaxBodySize:    10 * 1024 * 1024, // 10MB
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Store: StoreConfig{
			StateDir:        ".scour_state",
			MongoDatabase:   "scour",
			MongoCollection: "documents",
		},
		Search: SearchConfig{
			Engines: []string{"bing", "duckduckgo"},
			Timeout: 10 * time.Second,
		},
		LLM: LLMConfig{
			Enabled:           false,
			Provider:          "ollama",
			Model:             "llama3.2",
			Endpoint:          "http://localhost:11434",
			Timeout:           120 * time.Second,
			ExpansionKeywords: 6,
			EvaluateResults:   false,
		},
		API: APIConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
