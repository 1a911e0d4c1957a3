// Package terms normalizes free ticket text into deduplicated search tokens.
package terms

import (
	"regexp"
	"strings"
)

// nonWord matches every character that is neither a word character nor
// whitespace; such characters are replaced with a space before tokenizing.
var nonWord = regexp.MustCompile(`[^\w\s]`)

// stopwords are tokens that carry no search signal: articles, conjunctions,
// pronouns, and common auxiliary verbs.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "nor": {},
	"so": {}, "yet": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {},
	"been": {}, "being": {}, "am": {}, "do": {}, "does": {}, "did": {},
	"have": {}, "has": {}, "had": {}, "will": {}, "would": {}, "can": {},
	"could": {}, "should": {}, "shall": {}, "may": {}, "might": {}, "must": {},
	"to": {}, "of": {}, "in": {}, "on": {}, "at": {}, "by": {}, "for": {},
	"with": {}, "from": {}, "into": {}, "about": {}, "as": {}, "it": {},
	"its": {}, "this": {}, "that": {}, "these": {}, "those": {}, "my": {},
	"your": {}, "our": {}, "their": {}, "his": {}, "her": {}, "not": {},
	"no": {}, "he": {}, "she": {}, "they": {}, "we": {}, "you": {}, "me": {},
	"him": {}, "them": {}, "us": {}, "what": {}, "when": {}, "how": {},
	"why": {}, "there": {}, "here": {}, "then": {}, "than": {}, "very": {},
	"just": {}, "also": {}, "tried": {}, "trying": {}, "getting": {},
	"get": {}, "got": {}, "please": {}, "help": {},
}

// Extract normalizes text into an ordered set of significant search tokens:
// lowercased, punctuation stripped, tokens of length <= 1 and stopwords
// dropped, deduplicated preserving first occurrence. Empty input yields an
// empty (non-nil) slice.
func Extract(text string) []string {
	out := []string{}
	if text == "" {
		return out
	}
	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), " ")
	seen := make(map[string]struct{})
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) <= 1 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
