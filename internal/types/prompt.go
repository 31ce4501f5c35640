package types

import "strings"

// PromptContext carries the per-request derivations of the user prompt.
// Immutable after construction.
type PromptContext struct {
	// OriginalText is the raw user prompt.
	OriginalText string

	// SearchPhrase is the quoted OR-joined phrase list sent to the seed
	// search provider.
	SearchPhrase string

	// QueryText is the whitespace-joined keyword string used for ranking.
	QueryText string

	// Keywords is the ordered, de-duplicated set of lowercase stems used
	// by the URL and content heuristics.
	Keywords []string
}

// NewPromptContext builds a prompt context from expanded keyword phrases
// and their normalized token set. With no phrases the raw prompt is used
// as a degenerate single phrase.
func NewPromptContext(original string, phrases []string, keywords []string) *PromptContext {
	if len(phrases) == 0 {
		phrases = []string{original}
	}
	quoted := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		quoted = append(quoted, `"`+p+`"`)
	}
	return &PromptContext{
		OriginalText: original,
		SearchPhrase: strings.Join(quoted, " OR "),
		QueryText:    strings.Join(keywords, " "),
		Keywords:     keywords,
	}
}
