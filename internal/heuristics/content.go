// Package heuristics scores page content against a keyword set without
// any reference to the rest of the corpus. The score is computed once at
// ingestion and frozen on the document.
package heuristics

import (
	"math"
	"strings"
	"time"
)

// Component weights of the content score.
const (
	titleWeight     = 0.30
	densityWeight   = 0.40
	freshnessWeight = 0.15
	lengthWeight    = 0.15

	shortTitlePenalty = 0.9
	shortTitleLen     = 10

	densityEpsilon = 1e-9
)

// Scorer computes keyword-driven relevance scores for extracted pages.
type Scorer struct {
	keywords []string
	now      func() time.Time
}

// NewScorer builds a scorer over lowercase keywords.
func NewScorer(keywords []string) *Scorer {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return &Scorer{keywords: lowered, now: time.Now}
}

// Score returns the heuristic relevance of a page in [0,1]. An empty
// keyword set scores zero regardless of content.
func (s *Scorer) Score(title, body string, wordCount int, publishDate *time.Time) float64 {
	if len(s.keywords) == 0 {
		return 0
	}

	title = strings.TrimSpace(title)
	lowerTitle := strings.ToLower(title)
	lowerBody := strings.ToLower(body)

	titleHits := 0
	bodyHits := 0
	for _, kw := range s.keywords {
		if strings.Contains(lowerTitle, kw) {
			titleHits++
		}
		bodyHits += strings.Count(lowerBody, kw)
	}

	score := titleWeight * float64(titleHits) / float64(len(s.keywords))

	density := (float64(bodyHits) / (float64(wordCount) + densityEpsilon)) / float64(len(s.keywords))
	score += densityWeight * math.Min(math.Sqrt(1000*density), 1)

	score += freshnessWeight * s.freshness(publishDate)
	score += lengthWeight * lengthFactor(wordCount)

	if len(title) < shortTitleLen {
		score *= shortTitlePenalty
	}

	return clamp01(score)
}

// freshness maps publication age to a fraction of the freshness weight.
// Unknown and future dates earn nothing.
func (s *Scorer) freshness(publishDate *time.Time) float64 {
	if publishDate == nil {
		return 0
	}
	age := s.now().Sub(*publishDate)
	switch {
	case age < 0:
		return 0
	case age < 30*24*time.Hour:
		return 1.0
	case age < 180*24*time.Hour:
		return 10.0 / 15.0
	case age < 365*24*time.Hour:
		return 5.0 / 15.0
	default:
		return 0
	}
}

func lengthFactor(wordCount int) float64 {
	switch {
	case wordCount > 1500:
		return 1.0
	case wordCount > 750:
		return 10.0 / 15.0
	case wordCount > 300:
		return 5.0 / 15.0
	default:
		return 0
	}
}

// DepthThreshold computes the relevance bar for pages found at the given
// crawl depth. The bar relaxes one step per level but never drops below
// the floor.
func DepthThreshold(base, step, floor float64, depth int) float64 {
	t := base - float64(depth)*step
	if t < floor {
		return floor
	}
	return t
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
