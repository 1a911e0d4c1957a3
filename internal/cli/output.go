// Package cli provides CLI output helpers for Kotae.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// OutputFormat is the format for analysis result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteAnalysisResult writes one analysis result to w in the given format.
func WriteAnalysisResult(w io.Writer, result *models.AnalysisResult, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	writeAnalysisResultText(w, result)
	return nil
}

func writeAnalysisResultText(w io.Writer, result *models.AnalysisResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Ticket: %s\n", result.TicketID)
	if result.Error != "" {
		fmt.Fprintf(w, "ERROR: %s\n\n", result.Error)
		return
	}
	fmt.Fprintf(w, "Confidence: %.2f | Compliance: %s", result.Confidence, result.Compliance)
	if result.QAScore != nil {
		fmt.Fprintf(w, " | QA: %.0f/100", *result.QAScore)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "\nSuggested answer:\n%s\n", result.Solution)
	if result.Recommended != nil {
		fmt.Fprintf(w, "\nRecommended %s: [%s] %s\n",
			result.Recommended.Kind, result.Recommended.ID, result.Recommended.Title)
	}
	for _, flag := range result.RedFlags {
		fmt.Fprintf(w, "  ⚠ %s\n", flag)
	}
	if result.CoachingTip != "" {
		fmt.Fprintf(w, "\nCoaching tip: %s\n", result.CoachingTip)
	}
	if len(result.Sources) > 0 {
		fmt.Fprintf(w, "\nSources:\n")
		for _, src := range result.Sources {
			marker := " "
			if src.Learned {
				marker = "*"
			}
			fmt.Fprintf(w, "  %s [%s] %s — %s\n", marker, src.ID, src.Title, utils.Truncate(src.Snippet, 80))
		}
	}
	if result.Draft != "" {
		fmt.Fprintf(w, "\nKnowledge gap detected. Proposed draft:\n%s\n", result.Draft)
	}
	fmt.Fprintln(w)
}
