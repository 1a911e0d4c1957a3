// Package compose assembles the bounded-size evidence bundle that feeds
// solution generation, and the flat sources list surfaced to the operator.
package compose

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

const (
	// learnedBodyCap bounds each learned-article body in the context.
	learnedBodyCap = 1200
	// scoredBodyCap bounds each scored seed article or script body.
	scoredBodyCap = 1200
	// fallbackBodyCap bounds seed bodies on the zero-match fallback path.
	fallbackBodyCap = 800
	// snippetCap bounds the per-source snippet shown to the operator.
	snippetCap = 200
	// sourceTitleCap bounds seed-article titles in the sources list.
	sourceTitleCap = 120
)

// Input is the evidence selected for one analysis. FallbackKB is non-empty
// only when the KB search matched nothing; it then holds the leading records
// of the full corpus as unscored seed context. Scripts have no fallback path.
type Input struct {
	Learned       []models.LearnedArticle
	ScoredKB      []*models.ScoredRecord
	FallbackKB    []*models.KnowledgeRecord
	ScoredScripts []*models.ScoredRecord
}

// Context concatenates up to three text blocks (learned articles, seed KB
// articles, scripts), each entry independently size-capped. Empty blocks are
// omitted. Returns "" when there is no evidence at all.
func Context(in Input) string {
	blocks := []string{}

	if len(in.Learned) > 0 {
		var b strings.Builder
		b.WriteString("LEARNED KNOWLEDGE (from previously resolved tickets):\n")
		for _, a := range in.Learned {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", a.ID, a.Title, utils.Clip(a.Body, learnedBodyCap))
		}
		blocks = append(blocks, b.String())
	}

	if len(in.ScoredKB) > 0 {
		var b strings.Builder
		b.WriteString("KNOWLEDGE BASE ARTICLES:\n")
		for _, s := range in.ScoredKB {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", s.Record.ID, s.Record.Title, utils.Clip(s.Record.Body, scoredBodyCap))
		}
		blocks = append(blocks, b.String())
	} else if len(in.FallbackKB) > 0 {
		var b strings.Builder
		b.WriteString("KNOWLEDGE BASE ARTICLES (no direct match, general reference):\n")
		for _, r := range in.FallbackKB {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", r.ID, r.Title, utils.Clip(r.Body, fallbackBodyCap))
		}
		blocks = append(blocks, b.String())
	}

	if len(in.ScoredScripts) > 0 {
		var b strings.Builder
		b.WriteString("TIER-3 SCRIPTS (for deeper backend fixes):\n")
		for _, s := range in.ScoredScripts {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", s.Record.ID, s.Record.Title, utils.Clip(s.Record.Body, scoredBodyCap))
		}
		blocks = append(blocks, b.String())
	}

	return strings.Join(blocks, "\n")
}

// Sources builds the ordered sources list surfaced with the result: every
// learned article first, then every seed KB article used in context. The
// order is significant; it communicates provenance priority to the operator.
func Sources(in Input) []models.KnowledgeSource {
	out := []models.KnowledgeSource{}
	for _, a := range in.Learned {
		out = append(out, models.KnowledgeSource{
			ID:      a.ID,
			Title:   a.Title,
			Snippet: utils.Clip(a.Body, snippetCap),
			Learned: true,
		})
	}
	seed := []*models.KnowledgeRecord{}
	for _, s := range in.ScoredKB {
		seed = append(seed, s.Record)
	}
	if len(in.ScoredKB) == 0 {
		seed = append(seed, in.FallbackKB...)
	}
	for _, r := range seed {
		out = append(out, models.KnowledgeSource{
			ID:      r.ID,
			Title:   utils.Clip(r.Title, sourceTitleCap),
			Snippet: utils.Clip(r.Body, snippetCap),
		})
	}
	return out
}
