// Package models defines core data structures for tickets, knowledge records,
// analysis results, and the learning session state.
package models

// RecordKind distinguishes the two read-only knowledge corpora.
type RecordKind string

const (
	// KindKB is a knowledge-base article describing a known resolution.
	KindKB RecordKind = "KB"
	// KindScript is a Tier-3 procedural remediation record, recommended when
	// a deeper backend fix is needed.
	KindScript RecordKind = "SCRIPT"
)

// Ticket is a support ticket to analyze. Tickets come from a read-only corpus
// and are never mutated.
type Ticket struct {
	ID       string            `json:"id"`
	Subject  string            `json:"subject,omitempty"`
	Issue    string            `json:"issue"`
	Customer string            `json:"customer,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// KnowledgeRecord is an immutable record from one of the seed corpora
// (KB article or script). Body holds the article body for KB records and the
// purpose text for scripts. Extra carries forward-compatible columns that the
// loader does not recognize.
type KnowledgeRecord struct {
	ID       string            `json:"id"`
	Kind     RecordKind        `json:"kind"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Tags     []string          `json:"tags,omitempty"`
	Category string            `json:"category,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// ScoredRecord pairs a knowledge record with its relevance score: the count
// of distinct search terms matched. Any record returned from a search has
// score >= 1.
type ScoredRecord struct {
	Record *KnowledgeRecord `json:"record"`
	Score  int              `json:"score"`
}

// LearnedArticle is a knowledge article created by an approved publish action.
// Learned articles are owned by the operator session and never deleted
// in-session.
type LearnedArticle struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	TicketID string `json:"ticket_id"`
}
