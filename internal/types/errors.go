package types

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure modes.
var (
	ErrInvalidURL    = errors.New("invalid URL")
	ErrNotHTML       = errors.New("response is not HTML")
	ErrEmptyResponse = errors.New("empty response body")
	ErrEmptyContent  = errors.New("no usable page content")
	ErrThinContent   = errors.New("page content below minimum word count")
	ErrDuplicate     = errors.New("duplicate content")
	ErrAlreadySeen   = errors.New("URL already visited")
	ErrIrrelevant    = errors.New("page below relevance threshold")
	ErrNoSeeds       = errors.New("no seed URLs survived filtering")
	ErrNoResults     = errors.New("no results in store")
	ErrLLMDisabled   = errors.New("LLM features are disabled")
)

// FetchError wraps errors that occur while fetching a page.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
	Retryable  bool
	RetryAfter time.Duration // populated from Retry-After header on HTTP 429
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// ExtractError wraps errors that occur while extracting page content.
type ExtractError struct {
	URL string
	Err error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract error for %s: %v", e.URL, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// StoreError wraps errors from the content store and its persistence layer.
type StoreError struct {
	Backend string
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error (%s): %v", e.Backend, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// PhaseError tags an error with the orchestration phase that produced it.
// Phases degrade the response to partial_success rather than aborting it.
type PhaseError struct {
	Phase string // "cache", "crawl", "llm", "metadata", "evaluation"
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s phase: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }
