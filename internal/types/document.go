package types

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Document is the unit of the content store: one crawled page after
// extraction, scoring, and dedup.
type Document struct {
	// URL is the final page URL after any redirects.
	URL string `json:"url"`

	// Domain is the hostname of URL.
	Domain string `json:"domain"`

	// Title is the extracted page title.
	Title string `json:"title"`

	// Body is the cleaned main content text.
	Body string `json:"body"`

	// WordCount is the number of whitespace-separated words in Body.
	WordCount int `json:"word_count"`

	// PublishDate is the extracted publication instant, if any.
	// Always timezone-aware; naive dates are assumed UTC at extraction.
	PublishDate *time.Time `json:"publish_date,omitempty"`

	// HeuristicScore is the relevance score computed once at ingestion
	// and frozen thereafter. Range [0,1].
	HeuristicScore float64 `json:"heuristic_score"`

	// OutboundLinks are same-host absolute URLs discovered on the page.
	OutboundLinks []string `json:"outbound_links,omitempty"`

	// ContentHash is the hex SHA-256 digest of Body (UTF-8).
	ContentHash string `json:"content_hash"`
}

// HashBody computes the hex SHA-256 digest of a document body.
func HashBody(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

// Clone returns a shallow copy of the document with its own link slice.
func (d *Document) Clone() *Document {
	clone := *d
	clone.OutboundLinks = append([]string(nil), d.OutboundLinks...)
	return &clone
}

// ScoredDocument is a document augmented with query-time scores.
type ScoredDocument struct {
	Document

	// CosineScore is the TF-IDF cosine similarity against the query.
	CosineScore float64 `json:"cosine_similarity_score"`

	// WeightedScore is the blend of HeuristicScore and CosineScore used
	// for ranking and the cache-hit decision.
	WeightedScore float64 `json:"weighted_score"`
}

// PageContent is the extractor's view of a fetched page before it becomes
// a Document.
type PageContent struct {
	Title         string
	Body          string
	PublishDate   *time.Time
	OutboundLinks []string
	WordCount     int
}

// FetchResult is a successfully fetched HTML page.
type FetchResult struct {
	// HTML is the decoded page markup.
	HTML string

	// FinalURL is the URL after redirects were followed.
	FinalURL string
}
