// Package relevance ranks knowledge records against a set of search terms.
//
// The scoring contract is deliberately simple and deterministic: a record's
// score is the number of distinct terms that occur as substrings anywhere in
// its matchable text, ties keep corpus order. Which record "wins" a tie is
// therefore reproducible across runs.
package relevance

import (
	"sort"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

const (
	// DefaultKBLimit is the result cap for KB article searches.
	DefaultKBLimit = 10
	// DefaultScriptLimit is the result cap for script searches.
	DefaultScriptLimit = 5
)

// Score returns the number of distinct terms that occur as a substring in the
// record's haystack (title + body + tags + category, lowercased). It is not
// frequency-weighted: a term matched five times still counts once.
func Score(rec *models.KnowledgeRecord, terms []string) int {
	if rec == nil || len(terms) == 0 {
		return 0
	}
	var b strings.Builder
	b.WriteString(rec.Title)
	b.WriteByte(' ')
	b.WriteString(rec.Body)
	b.WriteByte(' ')
	b.WriteString(strings.Join(rec.Tags, " "))
	b.WriteByte(' ')
	b.WriteString(rec.Category)
	haystack := strings.ToLower(b.String())

	score := 0
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			score++
		}
	}
	return score
}

// Search scores every record in corpus against terms, drops zero-score
// records, sorts descending by score with ties preserving corpus order, and
// returns at most limit results.
func Search(corpus []*models.KnowledgeRecord, terms []string, limit int) []*models.ScoredRecord {
	scored := []*models.ScoredRecord{}
	for _, rec := range corpus {
		if s := Score(rec, terms); s >= 1 {
			scored = append(scored, &models.ScoredRecord{Record: rec, Score: s})
		}
	}
	// Stable: equal scores keep corpus order, which decides tie winners.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
