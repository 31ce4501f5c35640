package store

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/scourhq/scour/internal/keywords"
	"github.com/scourhq/scour/internal/types"
)

// Ranker scores stored documents against a query by blending the frozen
// heuristic score with TF-IDF cosine similarity. The vocabulary and IDF
// table are rebuilt from the store on every query, so rankings always
// reflect the current corpus.
type Ranker struct {
	HeuristicWeight float64
	CosineWeight    float64
}

// NewRanker builds a ranker with the given blend weights.
func NewRanker(heuristicWeight, cosineWeight float64) *Ranker {
	return &Ranker{HeuristicWeight: heuristicWeight, CosineWeight: cosineWeight}
}

// tokenRe matches tokens of two or more word characters.
var tokenRe = regexp.MustCompile(`\w\w+`)

func tokenize(text string) []string {
	raw := tokenRe.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if keywords.IsStopWord(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Rank returns the top-k documents by weighted score, descending, with
// insertion order breaking ties. Documents with blank bodies are
// excluded. An empty store, an empty query, or k <= 0 yields an empty
// result.
func (r *Ranker) Rank(docs []types.Document, query string, k int) []types.ScoredDocument {
	if len(docs) == 0 || k <= 0 {
		return nil
	}

	ranked := make([]types.Document, 0, len(docs))
	for _, doc := range docs {
		if strings.TrimSpace(doc.Body) == "" {
			continue
		}
		ranked = append(ranked, doc)
	}
	if len(ranked) == 0 {
		return nil
	}

	queryTokens := tokenize(query)
	cosines := cosineSimilarities(ranked, queryTokens)

	scored := make([]types.ScoredDocument, len(ranked))
	for i, doc := range ranked {
		scored[i] = types.ScoredDocument{
			Document:      doc,
			CosineScore:   cosines[i],
			WeightedScore: r.HeuristicWeight*doc.HeuristicScore + r.CosineWeight*cosines[i],
		}
	}

	order := make([]int, len(scored))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scored[order[a]].WeightedScore > scored[order[b]].WeightedScore
	})

	if k > len(order) {
		k = len(order)
	}
	out := make([]types.ScoredDocument, k)
	for i := 0; i < k; i++ {
		out[i] = scored[order[i]]
	}
	return out
}

// cosineSimilarities computes the TF-IDF cosine between the query and
// each document body. Term frequency is the raw count, IDF is smoothed
// as ln((1+n)/(1+df))+1, and rows are l2-normalized so the cosine is a
// plain dot product. Query terms outside the document vocabulary are
// ignored.
func cosineSimilarities(docs []types.Document, queryTokens []string) []float64 {
	n := len(docs)
	out := make([]float64, n)
	if len(queryTokens) == 0 {
		return out
	}

	vocab := make(map[string]int)
	docCounts := make([]map[int]float64, n)
	df := make(map[int]int)

	for i, doc := range docs {
		counts := make(map[int]float64)
		for _, tok := range tokenize(doc.Body) {
			id, ok := vocab[tok]
			if !ok {
				id = len(vocab)
				vocab[tok] = id
			}
			counts[id]++
		}
		for id := range counts {
			df[id]++
		}
		docCounts[i] = counts
	}
	if len(vocab) == 0 {
		return out
	}

	idf := make([]float64, len(vocab))
	for id, d := range df {
		idf[id] = math.Log(float64(1+n)/float64(1+d)) + 1
	}

	queryVec := make(map[int]float64)
	for _, tok := range queryTokens {
		if id, ok := vocab[tok]; ok {
			queryVec[id]++
		}
	}
	if normalize(queryVec, idf) == 0 {
		return out
	}

	for i, counts := range docCounts {
		if normalize(counts, idf) == 0 {
			continue
		}
		var dot float64
		for id, qw := range queryVec {
			dot += qw * counts[id]
		}
		out[i] = dot
	}
	return out
}

// normalize scales counts by IDF and l2-normalizes in place, returning
// the pre-normalization norm.
func normalize(vec map[int]float64, idf []float64) float64 {
	var sumSq float64
	for id, tf := range vec {
		w := tf * idf[id]
		vec[id] = w
		sumSq += w * w
	}
	if sumSq == 0 {
		return 0
	}
	norm := math.Sqrt(sumSq)
	for id := range vec {
		vec[id] /= norm
	}
	return norm
}
