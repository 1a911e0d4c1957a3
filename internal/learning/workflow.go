package learning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/session"
	"github.com/hyperjump/kotae/pkg/utils"
)

// evidenceSnippetCap bounds the lineage evidence snippet.
const evidenceSnippetCap = 200

// CycleState is the per-ticket analysis cycle state.
type CycleState string

const (
	CycleIdle      CycleState = "idle"
	CycleAnalyzing CycleState = "analyzing"
	CycleReady     CycleState = "ready"
	CyclePublished CycleState = "published"
)

var (
	// ErrNoPendingDraft is returned by Approve and Dismiss when the cycle
	// holds no draft to act on.
	ErrNoPendingDraft = errors.New("no pending draft")
	// ErrStaleAnalysis is returned when a newer analysis was started before
	// this one resolved; the stale result is discarded.
	ErrStaleAnalysis = errors.New("analysis superseded by a newer one")
)

// Analyzer is the generation pipeline the workflow drives.
type Analyzer interface {
	Analyze(ctx context.Context, ticket *models.Ticket, learned []models.LearnedArticle) (*models.AnalysisResult, error)
}

// Workflow owns the operator session: it runs analyses, tracks the gap/publish
// cycle, and is the sole mutator of the session state. State is hydrated from
// the store at construction, before any analysis can begin, and persisted
// after every non-empty change.
//
// Every analysis is tagged with a monotonically increasing generation id;
// a result that is no longer the latest issued is discarded, so a slow reply
// can never overwrite a newer one.
type Workflow struct {
	analyzer Analyzer
	repo     corpus.Repository
	store    session.Store
	logger   *zap.Logger

	mu           sync.Mutex
	state        models.SessionState
	cycle        CycleState
	ticketID     string
	pendingDraft string
	generation   uint64
}

// NewWorkflow hydrates the session state from the store and returns a ready
// workflow.
func NewWorkflow(an Analyzer, repo corpus.Repository, store session.Store, logger *zap.Logger) (*Workflow, error) {
	stored, err := store.Read(context.Background())
	if err != nil {
		return nil, fmt.Errorf("hydrate session: %w", err)
	}
	logger.Info("session hydrated",
		zap.Int("learned_articles", len(stored.Learned)),
		zap.Int("events", len(stored.Events)),
		zap.Int("lineage_records", len(stored.Lineage)))
	return &Workflow{
		analyzer: an,
		repo:     repo,
		store:    store,
		logger:   logger,
		state:    *stored,
		cycle:    CycleIdle,
	}, nil
}

// Analyze runs the full pipeline for one ticket. Starting a new analysis
// supersedes any in-flight one and resets the cycle. A non-empty draft in the
// result records a knowledge gap and leaves the cycle ready for Approve or
// Dismiss.
func (w *Workflow) Analyze(ctx context.Context, ticketID string) (*models.AnalysisResult, error) {
	ticket, err := w.repo.TicketByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.generation++
	gen := w.generation
	w.cycle = CycleAnalyzing
	w.ticketID = ticketID
	w.pendingDraft = ""
	learned := append([]models.LearnedArticle{}, w.state.Learned...)
	w.mu.Unlock()

	result, analyzeErr := w.analyzer.Analyze(ctx, ticket, learned)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.generation {
		w.logger.Info("discarding stale analysis result",
			zap.String("ticket_id", ticketID), zap.Uint64("generation", gen))
		return result, ErrStaleAnalysis
	}

	if analyzeErr != nil {
		w.cycle = CycleIdle
		return result, nil // diagnostic result; error already embedded
	}

	w.cycle = CycleReady
	if result.Draft != "" {
		w.pendingDraft = result.Draft
		now := time.Now()
		w.state.Events = append(w.state.Events,
			models.LearningEvent{
				Kind: models.EventGapDetected, TicketID: ticketID,
				Label: "Knowledge gap detected", Timestamp: now,
			},
			models.LearningEvent{
				Kind: models.EventDraftProposed, TicketID: ticketID,
				Label: "New knowledge draft proposed", Timestamp: now,
			})
		if err := w.persistLocked(ctx); err != nil {
			return result, err
		}
	}
	return result, nil
}

// Approve publishes the pending draft: a new learned article with a fresh
// unique id, an approved event, and one lineage record pointing back at the
// ticket. The article is visible to every subsequent analysis.
func (w *Workflow) Approve(ctx context.Context) (*models.LearnedArticle, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cycle != CycleReady || w.pendingDraft == "" {
		return nil, ErrNoPendingDraft
	}

	title, body := ParseDraft(w.pendingDraft)
	article := models.LearnedArticle{
		ID:       "LK-" + uuid.NewString(),
		Title:    title,
		Body:     body,
		TicketID: w.ticketID,
	}
	w.state.Learned = append(w.state.Learned, article)
	w.state.Events = append(w.state.Events, models.LearningEvent{
		Kind: models.EventApproved, TicketID: w.ticketID, KBID: article.ID,
		Label: "Draft approved and published", Timestamp: time.Now(),
	})
	w.state.Lineage = append(w.state.Lineage, models.LineageRecord{
		KBArticleID:     article.ID,
		SourceType:      "Ticket",
		SourceID:        w.ticketID,
		EvidenceSnippet: utils.Clip(body, evidenceSnippetCap),
	})

	if err := w.persistLocked(ctx); err != nil {
		return nil, err
	}
	w.logger.Info("draft published",
		zap.String("article_id", article.ID), zap.String("ticket_id", w.ticketID))
	w.pendingDraft = ""
	w.cycle = CyclePublished
	return &article, nil
}

// Dismiss discards the pending draft. The gap is still recorded in the
// learning log; no article and no lineage record are created.
func (w *Workflow) Dismiss(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cycle != CycleReady || w.pendingDraft == "" {
		return ErrNoPendingDraft
	}
	w.state.Events = append(w.state.Events, models.LearningEvent{
		Kind: models.EventGapDetected, TicketID: w.ticketID,
		Label: "Draft dismissed by operator", Timestamp: time.Now(),
	})
	if err := w.persistLocked(ctx); err != nil {
		return err
	}
	w.logger.Info("draft dismissed", zap.String("ticket_id", w.ticketID))
	w.pendingDraft = ""
	w.cycle = CycleIdle
	return nil
}

// State returns a copy of the current session state.
func (w *Workflow) State() models.SessionState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return models.SessionState{
		Learned: append([]models.LearnedArticle{}, w.state.Learned...),
		Events:  append([]models.LearningEvent{}, w.state.Events...),
		Lineage: append([]models.LineageRecord{}, w.state.Lineage...),
	}
}

// Cycle returns the current cycle state.
func (w *Workflow) Cycle() CycleState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cycle
}

// PendingDraft returns the draft awaiting approval, if any.
func (w *Workflow) PendingDraft() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pendingDraft
}

// persistLocked writes the current state. Caller holds mu. Empty states are
// never persisted; the store additionally guards against an empty state
// clobbering a stored one.
func (w *Workflow) persistLocked(ctx context.Context) error {
	if w.state.Empty() {
		return nil
	}
	if err := w.store.Write(ctx, &w.state); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}
