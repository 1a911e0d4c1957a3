// Package analyzer orchestrates answer generation for a ticket: retrieval,
// the solve call, and the best-effort compliance and quality checks.
package analyzer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/compose"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/jsonx"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/terms"
)

// fallbackSeedCount is how many leading corpus records serve as unscored seed
// context when the KB search matches nothing. Scripts have no such fallback.
const fallbackSeedCount = 5

// defaultConfidence is assumed when the model omits or mangles
// confidence_score, before clamping.
const defaultConfidence = 0.5

// Analyzer drives the three-call generation pipeline. It never retries and
// imposes a strict two-phase ordering: the compliance and quality calls are
// issued only after the solve call resolves, and are awaited jointly.
type Analyzer struct {
	repo        corpus.Repository
	client      llm.Client
	kbLimit     int
	scriptLimit int
	logger      *zap.Logger
}

// New creates an analyzer with the given dependencies.
func New(repo corpus.Repository, client llm.Client, cfg config.AnalysisConfig, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		repo:        repo,
		client:      client,
		kbLimit:     cfg.KBLimit,
		scriptLimit: cfg.ScriptLimit,
		logger:      logger,
	}
}

// solveReply is the JSON shape required from the solve call. Confidence is
// typed loosely because models sometimes emit it as a string or drop it.
type solveReply struct {
	Solution            string            `json:"solution"`
	ConfidenceScore     any               `json:"confidence_score"`
	NewKnowledgeDraft   *string           `json:"new_knowledge_draft"`
	RecommendedResource *recommendedReply `json:"recommended_resource"`
}

type recommendedReply struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Title string `json:"title"`
}

// qualityReply is the JSON shape required from the quality call.
type qualityReply struct {
	QAScore     *float64 `json:"qa_score"`
	RedFlags    []string `json:"red_flags"`
	CoachingTip string   `json:"coaching_tip"`
}

// Analyze produces an AnalysisResult for the ticket. learned holds the
// session's published articles, which take provenance priority over seed
// knowledge. On the fatal path the returned result carries a diagnostic
// solution, zero confidence, and a non-empty Error field, alongside the
// error itself.
func (a *Analyzer) Analyze(ctx context.Context, ticket *models.Ticket, learned []models.LearnedArticle) (*models.AnalysisResult, error) {
	searchTerms := terms.Extract(ticket.Issue)
	a.logger.Debug("analyzing ticket",
		zap.String("ticket_id", ticket.ID), zap.Strings("terms", searchTerms))

	in, err := a.retrieve(ctx, searchTerms)
	if err != nil {
		return a.failed(ticket, err), err
	}
	in.Learned = learned
	sources := compose.Sources(in)

	result, err := a.solve(ctx, ticket, compose.Context(in))
	if err != nil {
		genErr := &GenerationError{Err: err}
		return a.failed(ticket, genErr), genErr
	}
	result.Sources = sources

	a.runChecks(ctx, result)
	return result, nil
}

// retrieve searches both corpora and applies the zero-match KB fallback.
func (a *Analyzer) retrieve(ctx context.Context, searchTerms []string) (compose.Input, error) {
	var in compose.Input

	kbHits, err := a.repo.SearchKB(ctx, searchTerms, a.kbLimit)
	if err != nil {
		return in, fmt.Errorf("search knowledge base: %w", err)
	}
	in.ScoredKB = kbHits
	if len(kbHits) == 0 {
		all, err := a.repo.KBArticles(ctx)
		if err != nil {
			return in, fmt.Errorf("load seed knowledge: %w", err)
		}
		if len(all) > fallbackSeedCount {
			all = all[:fallbackSeedCount]
		}
		in.FallbackKB = all
	}

	scriptHits, err := a.repo.SearchScripts(ctx, searchTerms, a.scriptLimit)
	if err != nil {
		return in, fmt.Errorf("search scripts: %w", err)
	}
	in.ScoredScripts = scriptHits
	return in, nil
}

// solve runs the mandatory first call and normalizes its output.
func (a *Analyzer) solve(ctx context.Context, ticket *models.Ticket, contextText string) (*models.AnalysisResult, error) {
	raw, err := a.client.Generate(ctx, solvePrompt(contextText, ticket.Issue))
	if err != nil {
		return nil, err
	}
	obj, ok := jsonx.FirstObject(raw)
	if !ok {
		return nil, fmt.Errorf("no JSON object in model reply")
	}
	var reply solveReply
	if err := jsonx.Unmarshal([]byte(obj), &reply); err != nil {
		return nil, err
	}

	result := &models.AnalysisResult{
		TicketID:   ticket.ID,
		Solution:   reply.Solution,
		Confidence: clamp(coerceConfidence(reply.ConfidenceScore), 0, 1),
		Compliance: models.ComplianceUnknown,
	}
	if reply.NewKnowledgeDraft != nil && strings.TrimSpace(*reply.NewKnowledgeDraft) != "" {
		result.Draft = *reply.NewKnowledgeDraft
	}
	if r := reply.RecommendedResource; r != nil && r.ID != "" {
		switch models.RecordKind(r.Type) {
		case models.KindKB, models.KindScript:
			result.Recommended = &models.RecommendedResource{
				Kind: models.RecordKind(r.Type), ID: r.ID, Title: r.Title,
			}
		}
	}
	return result, nil
}

// runChecks issues the compliance and quality calls concurrently and merges
// whatever succeeded into result. Failures are logged and swallowed; they
// must never fail the analysis.
func (a *Analyzer) runChecks(ctx context.Context, result *models.AnalysisResult) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		raw, err := a.client.Generate(ctx, compliancePrompt(result.Solution))
		if err != nil {
			a.logger.Warn("compliance check failed", zap.Error(err))
			return
		}
		if strings.Contains(raw, "UNSAFE") {
			result.Compliance = models.ComplianceUnsafe
		} else {
			result.Compliance = models.ComplianceSafe
		}
	}()

	go func() {
		defer wg.Done()
		raw, err := a.client.Generate(ctx, qualityPrompt(result.Solution))
		if err != nil {
			a.logger.Warn("quality check failed", zap.Error(err))
			return
		}
		obj, ok := jsonx.FirstObject(raw)
		if !ok {
			a.logger.Warn("quality check returned no JSON object")
			return
		}
		var reply qualityReply
		if err := jsonx.Unmarshal([]byte(obj), &reply); err != nil {
			a.logger.Warn("quality check parse failed", zap.Error(err))
			return
		}
		if reply.QAScore != nil {
			score := clamp(*reply.QAScore, 0, 100)
			result.QAScore = &score
		}
		result.RedFlags = reply.RedFlags
		result.CoachingTip = reply.CoachingTip
	}()

	wg.Wait()
}

// failed builds the diagnostic result for the fatal path.
func (a *Analyzer) failed(ticket *models.Ticket, err error) *models.AnalysisResult {
	a.logger.Error("analysis failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
	return &models.AnalysisResult{
		TicketID:   ticket.ID,
		Solution:   fmt.Sprintf("Unable to generate a suggested answer: %v", err),
		Confidence: 0,
		Compliance: models.ComplianceUnknown,
		Sources:    []models.KnowledgeSource{},
		Error:      err.Error(),
	}
}

// coerceConfidence accepts the model's confidence field in whatever type it
// arrived; anything non-numeric falls back to the default.
func coerceConfidence(v any) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return defaultConfidence
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
