package models

// ComplianceStatus is the outcome of the compliance check on a generated
// solution.
type ComplianceStatus string

const (
	ComplianceSafe    ComplianceStatus = "SAFE"
	ComplianceUnsafe  ComplianceStatus = "UNSAFE"
	ComplianceUnknown ComplianceStatus = "UNKNOWN"
)

// KnowledgeSource identifies one piece of evidence that went into the
// generation context. Learned articles come first in any sources list; order
// communicates provenance priority to the operator.
type KnowledgeSource struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Learned bool   `json:"learned,omitempty"`
}

// RecommendedResource points the operator at an existing KB article or script.
// Only present when the model named a resource with a valid kind and id.
type RecommendedResource struct {
	Kind  RecordKind `json:"kind"`
	ID    string     `json:"id"`
	Title string     `json:"title,omitempty"`
}

// AnalysisResult is the outcome of one analysis request. Immutable once
// returned. Confidence is always within [0,1] and QAScore, when present,
// within [0,100].
type AnalysisResult struct {
	TicketID    string               `json:"ticket_id"`
	Solution    string               `json:"solution"`
	Confidence  float64              `json:"confidence"`
	Compliance  ComplianceStatus     `json:"compliance"`
	Draft       string               `json:"draft,omitempty"`
	Sources     []KnowledgeSource    `json:"sources"`
	Recommended *RecommendedResource `json:"recommended,omitempty"`
	QAScore     *float64             `json:"qa_score,omitempty"`
	RedFlags    []string             `json:"red_flags,omitempty"`
	CoachingTip string               `json:"coaching_tip,omitempty"`
	Error       string               `json:"error,omitempty"`
}
