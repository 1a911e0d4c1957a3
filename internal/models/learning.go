package models

import "time"

// EventKind classifies entries in the append-only learning log.
type EventKind string

const (
	EventGapDetected   EventKind = "gap_detected"
	EventDraftProposed EventKind = "draft_proposed"
	EventApproved      EventKind = "approved"
)

// LearningEvent is one entry in the append-only learning log.
type LearningEvent struct {
	Kind      EventKind `json:"kind"`
	TicketID  string    `json:"ticket_id"`
	KBID      string    `json:"kb_id,omitempty"`
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
}

// LineageRecord links a published article back to the ticket that produced
// it. Append-only; one record per approved publish. Duplicate article ids are
// not rejected here.
type LineageRecord struct {
	KBArticleID     string `json:"kb_article_id"`
	SourceType      string `json:"source_type"`
	SourceID        string `json:"source_id"`
	EvidenceSnippet string `json:"evidence_snippet"`
}

// SessionState is the durable learning state of one operator session. It is
// hydrated once at startup and persisted after every non-empty change.
type SessionState struct {
	Learned []LearnedArticle `json:"learned"`
	Events  []LearningEvent  `json:"events"`
	Lineage []LineageRecord  `json:"lineage"`
}

// Empty reports whether the state carries no articles, events, or lineage.
func (s *SessionState) Empty() bool {
	return len(s.Learned) == 0 && len(s.Events) == 0 && len(s.Lineage) == 0
}
