package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/scourhq/scour/internal/types"
)

// Generator is the LLM surface the pipeline steps depend on.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// QueryEnricher expands a user prompt into search keyword phrases.
type QueryEnricher struct {
	llm      Generator
	nPhrases int
	logger   *slog.Logger
}

// NewQueryEnricher creates an enricher producing up to nPhrases phrases.
func NewQueryEnricher(llm Generator, nPhrases int, logger *slog.Logger) *QueryEnricher {
	if nPhrases < 1 {
		nPhrases = 6
	}
	return &QueryEnricher{
		llm:      llm,
		nPhrases: nPhrases,
		logger:   logger.With("component", "query_enricher"),
	}
}

// Expand asks the LLM for comma-separated keyword phrases covering the
// prompt. The raw prompt is always usable as a fallback, so callers
// treat an error here as soft.
func (e *QueryEnricher) Expand(ctx context.Context, prompt string) ([]string, error) {
	instruction := fmt.Sprintf(
		"Generate exactly %d short keyword phrases a search engine would match for the question below. "+
			"Reply with the phrases only, comma-separated, no numbering and no extra text.\n\nQuestion: %s",
		e.nPhrases, prompt)

	raw, err := e.llm.Generate(ctx, instruction)
	if err != nil {
		return nil, fmt.Errorf("query expansion: %w", err)
	}

	var phrases []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		part = strings.TrimSuffix(part, ".")
		if part == "" {
			continue
		}
		phrases = append(phrases, part)
		if len(phrases) == e.nPhrases {
			break
		}
	}
	if len(phrases) == 0 {
		return nil, fmt.Errorf("query expansion returned no phrases")
	}

	e.logger.Debug("prompt expanded", "phrases", len(phrases))
	return phrases, nil
}

// AnswerSynthesizer writes a grounded answer from ranked results.
type AnswerSynthesizer struct {
	llm    Generator
	logger *slog.Logger
}

// NewAnswerSynthesizer creates a synthesizer.
func NewAnswerSynthesizer(llm Generator, logger *slog.Logger) *AnswerSynthesizer {
	return &AnswerSynthesizer{llm: llm, logger: logger.With("component", "answer_synthesizer")}
}

// Generate produces an answer to the prompt using only the supplied
// results, citing sources by number.
func (s *AnswerSynthesizer) Generate(ctx context.Context, prompt string, results []types.ScoredDocument) (string, error) {
	if len(results) == 0 {
		return "", types.ErrNoResults
	}

	var sources strings.Builder
	for i, res := range results {
		body := res.Body
		if len(body) > 2000 {
			body = body[:2000]
		}
		fmt.Fprintf(&sources, "[%d] %s (%s)\n%s\n\n", i+1, res.Title, res.URL, body)
	}

	instruction := fmt.Sprintf(
		"Answer the question using only the sources below. Cite sources inline as [1], [2], etc. "+
			"If the sources do not contain the answer, say so.\n\nQuestion: %s\n\nSources:\n%s",
		prompt, sources.String())

	answer, err := s.llm.Generate(ctx, instruction)
	if err != nil {
		return "", fmt.Errorf("answer synthesis: %w", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("answer synthesis returned empty response")
	}
	return answer, nil
}

// Judge scores crawl results and the synthesized answer.
type Judge struct {
	llm    Generator
	logger *slog.Logger
}

// NewJudge creates a judge.
func NewJudge(llm Generator, logger *slog.Logger) *Judge {
	return &Judge{llm: llm, logger: logger.With("component", "judge")}
}

// Evaluate asks the LLM to score the retrieved results and the answer
// on a handful of quality dimensions, each 0-10. The returned map is
// surfaced verbatim in the response metrics.
func (j *Judge) Evaluate(ctx context.Context, prompt, answer string, results []types.ScoredDocument) (map[string]any, error) {
	var sources strings.Builder
	for i, res := range results {
		body := res.Body
		if len(body) > 800 {
			body = body[:800]
		}
		fmt.Fprintf(&sources, "[%d] %s\n%s\n\n", i+1, res.Title, body)
	}

	instruction := fmt.Sprintf(
		`Score the following retrieval and answer for the question. Return JSON only, shaped as:
{"result_relevance": 0-10, "result_coverage": 0-10, "answer_accuracy": 0-10, "answer_completeness": 0-10, "comments": "short justification"}

Question: %s

Retrieved results:
%s
Answer:
%s`,
		prompt, sources.String(), answer)

	raw, err := j.llm.Generate(ctx, instruction)
	if err != nil {
		return nil, fmt.Errorf("evaluation: %w", err)
	}

	var scores map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &scores); err != nil {
		return nil, fmt.Errorf("parse evaluation response: %w", err)
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("evaluation returned no scores")
	}
	return scores, nil
}
