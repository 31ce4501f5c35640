// Package keywords turns free-text prompts into the normalized keyword
// sets used for URL filtering, heuristic scoring, and ranking queries.
package keywords

import (
	"regexp"
	"strings"
)

// wordRe matches word tokens (letters, digits, underscores).
var wordRe = regexp.MustCompile(`[\w]+`)

// Normalize extracts the ordered, de-duplicated keyword set of a prompt:
// lowercase word tokens, stop words and tokens shorter than three
// characters dropped, each surviving token followed by its lemma variant
// when that differs. First-seen order is preserved.
func Normalize(text string) []string {
	tokens := wordRe.FindAllString(strings.ToLower(text), -1)

	seen := make(map[string]struct{}, len(tokens))
	var out []string
	add := func(w string) {
		if _, ok := seen[w]; ok {
			return
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}

	for _, tok := range tokens {
		if len(tok) <= 2 || stopWords[tok] || !hasLetter(tok) {
			continue
		}
		add(tok)
		if lemma := Lemma(tok); lemma != tok && len(lemma) > 2 && !stopWords[lemma] {
			add(lemma)
		}
	}
	return out
}

// NormalizePhrases flattens a list of keyword phrases into one keyword
// set, preserving first-seen order across phrases.
func NormalizePhrases(phrases []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, phrase := range phrases {
		for _, kw := range Normalize(phrase) {
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	return out
}

// Lemma applies light rule-based suffix stripping to a lowercase word.
// It is deliberately shallow: just enough for "computers" and "computing"
// to meet at a common form without a full stemmer's over-conflation.
func Lemma(w string) string {
	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "sses") && len(w) > 5:
		return w[:len(w)-2]
	case strings.HasSuffix(w, "ing") && len(w) > 5:
		stem := w[:len(w)-3]
		if doubledConsonant(stem) {
			return stem[:len(stem)-1]
		}
		return stem
	case strings.HasSuffix(w, "ed") && len(w) > 4:
		stem := w[:len(w)-2]
		if doubledConsonant(stem) {
			return stem[:len(stem)-1]
		}
		return stem
	case strings.HasSuffix(w, "es") && len(w) > 4 && !strings.HasSuffix(w, "ses"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && len(w) > 3:
		return w[:len(w)-1]
	}
	return w
}

// doubledConsonant reports whether a stem ends in a doubled consonant
// left over from suffixation ("stopp", "plann").
func doubledConsonant(stem string) bool {
	n := len(stem)
	if n < 2 || stem[n-1] != stem[n-2] {
		return false
	}
	switch stem[n-1] {
	case 'a', 'e', 'i', 'o', 'u', 'l', 's', 'z':
		return false
	}
	return true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// stopWords is the English stop-word list shared by keyword extraction
// and TF-IDF vectorization.
var stopWords = map[string]bool{
	"a": true, "about": true, "above": true, "across": true, "after": true,
	"afterwards": true, "again": true, "against": true, "all": true,
	"almost": true, "alone": true, "along": true, "already": true,
	"also": true, "although": true, "always": true, "am": true,
	"among": true, "amongst": true, "an": true, "and": true, "another": true,
	"any": true, "anyhow": true, "anyone": true, "anything": true,
	"anyway": true, "anywhere": true, "are": true, "around": true,
	"as": true, "at": true, "back": true, "be": true, "became": true,
	"because": true, "become": true, "becomes": true, "becoming": true,
	"been": true, "before": true, "beforehand": true, "behind": true,
	"being": true, "below": true, "beside": true, "besides": true,
	"between": true, "beyond": true, "both": true, "bottom": true,
	"but": true, "by": true, "call": true, "can": true, "cannot": true,
	"could": true, "did": true, "do": true, "does": true, "doing": true,
	"done": true, "down": true, "due": true, "during": true, "each": true,
	"either": true, "else": true, "elsewhere": true, "empty": true,
	"enough": true, "even": true, "ever": true, "every": true,
	"everyone": true, "everything": true, "everywhere": true, "except": true,
	"few": true, "first": true, "for": true, "former": true, "formerly": true,
	"from": true, "further": true, "get": true, "give": true, "go": true,
	"had": true, "has": true, "have": true, "he": true, "hence": true,
	"her": true, "here": true, "hereafter": true, "hereby": true,
	"herein": true, "hereupon": true, "hers": true, "herself": true,
	"him": true, "himself": true, "his": true, "how": true, "however": true,
	"i": true, "if": true, "in": true, "indeed": true, "into": true,
	"is": true, "it": true, "its": true, "itself": true, "just": true,
	"keep": true, "last": true, "latter": true, "latterly": true,
	"least": true, "less": true, "made": true, "many": true, "may": true,
	"me": true, "meanwhile": true, "might": true, "mine": true, "more": true,
	"moreover": true, "most": true, "mostly": true, "much": true,
	"must": true, "my": true, "myself": true, "namely": true, "neither": true,
	"never": true, "nevertheless": true, "next": true, "no": true,
	"nobody": true, "none": true, "noone": true, "nor": true, "not": true,
	"nothing": true, "now": true, "nowhere": true, "of": true, "off": true,
	"often": true, "on": true, "once": true, "one": true, "only": true,
	"onto": true, "or": true, "other": true, "others": true,
	"otherwise": true, "our": true, "ours": true, "ourselves": true,
	"out": true, "over": true, "own": true, "per": true, "perhaps": true,
	"please": true, "rather": true, "same": true, "seem": true,
	"seemed": true, "seeming": true, "seems": true, "several": true,
	"she": true, "should": true, "since": true, "so": true, "some": true,
	"somehow": true, "someone": true, "something": true, "sometime": true,
	"sometimes": true, "somewhere": true, "still": true, "such": true,
	"than": true, "that": true, "the": true, "their": true, "theirs": true,
	"them": true, "themselves": true, "then": true, "thence": true,
	"there": true, "thereafter": true, "thereby": true, "therefore": true,
	"therein": true, "thereupon": true, "these": true, "they": true,
	"this": true, "those": true, "though": true, "through": true,
	"throughout": true, "thus": true, "to": true, "together": true,
	"too": true, "top": true, "toward": true, "towards": true, "under": true,
	"until": true, "up": true, "upon": true, "us": true, "very": true,
	"via": true, "was": true, "we": true, "well": true, "were": true,
	"what": true, "whatever": true, "when": true, "whence": true,
	"whenever": true, "where": true, "whereafter": true, "whereas": true,
	"whereby": true, "wherein": true, "whereupon": true, "wherever": true,
	"whether": true, "which": true, "while": true, "whither": true,
	"who": true, "whoever": true, "whole": true, "whom": true, "whose": true,
	"why": true, "will": true, "with": true, "within": true, "without": true,
	"would": true, "yet": true, "you": true, "your": true, "yours": true,
	"yourself": true, "yourselves": true,
}

// IsStopWord reports whether a lowercase token is on the shared English
// stop-word list.
func IsStopWord(w string) bool { return stopWords[w] }
