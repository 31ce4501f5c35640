package types

// Request statuses for a crawl-and-query operation.
const (
	StatusSuccess        = "success"
	StatusPartialSuccess = "partial_success"
	StatusError          = "error"
)

// CrawlRequest is the external request surface of the orchestrator.
// Zero values mean "use the configured default".
type CrawlRequest struct {
	Prompt         string   `json:"user_prompt"`
	URLs           []string `json:"urls,omitempty"`
	Strict         bool     `json:"strict_flag,omitempty"`
	NumResults     int      `json:"num_results,omitempty"`
	NumSeedURLs    int      `json:"num_seed_urls,omitempty"`
	MaxDepth       *int     `json:"max_depth,omitempty"`
	ForceCrawl     bool     `json:"force_crawl,omitempty"`
	BaseThreshold  *float64 `json:"relevance_threshold,omitempty"`
	UseLLM         bool     `json:"use_llm,omitempty"`
}

// URLMetadata summarizes URL bookkeeping for a request.
type URLMetadata struct {
	VisitedTotal int `json:"visited_total"`
	SeedURLsUsed int `json:"seed_urls_used"`
}

// Metadata is the per-request response metadata block. Phase errors are
// populated only when the corresponding phase degraded the request.
type Metadata struct {
	URLs                  URLMetadata `json:"urls"`
	ContentCollectedTotal int         `json:"content_collected_total"`
	FromCache             bool        `json:"from_cache"`

	CacheError      string `json:"cache_error,omitempty"`
	CrawlError      string `json:"crawl_error,omitempty"`
	LLMError        string `json:"llm_error,omitempty"`
	MetadataError   string `json:"metadata_error,omitempty"`
	EvaluationError string `json:"evaluation_error,omitempty"`
}

// EvaluationMetrics aggregates timing, harvest, and optional judge output.
type EvaluationMetrics struct {
	TimeMetrics    map[string]any `json:"time_metrics"`
	HarvestMetrics map[string]any `json:"harvest_metrics"`
	GenAIScoring   map[string]any `json:"generative_ai_scoring_metrics,omitempty"`
}

// CrawlResponse is the full response of a crawl-and-query operation.
type CrawlResponse struct {
	Status            string            `json:"status"`
	Prompt            string            `json:"prompt"`
	Results           []ScoredDocument  `json:"results"`
	Metadata          Metadata          `json:"metadata"`
	LLMResponse       string            `json:"llm_response"` // synthesized answer, a failure message, or "N/A"
	EvaluationMetrics EvaluationMetrics `json:"evaluation_metrics"`
	Errors            []string          `json:"error,omitempty"`
}
