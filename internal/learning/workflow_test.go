package learning

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/session"
)

// stubAnalyzer returns a fixed result, optionally blocking until released to
// simulate an in-flight analysis.
type stubAnalyzer struct {
	mu      sync.Mutex
	result  *models.AnalysisResult
	err     error
	block   chan struct{}
	learned [][]models.LearnedArticle
}

func (s *stubAnalyzer) Analyze(ctx context.Context, ticket *models.Ticket, learned []models.LearnedArticle) (*models.AnalysisResult, error) {
	s.mu.Lock()
	s.learned = append(s.learned, learned)
	block := s.block
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	out := *s.result
	out.TicketID = ticket.ID
	return &out, s.err
}

func draftResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		Solution:   "try this",
		Confidence: 0.5,
		Compliance: models.ComplianceSafe,
		Draft:      "Title: VPN Setup\n\nBody: Do X then Y.",
	}
}

func cleanResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		Solution:   "known fix",
		Confidence: 0.9,
		Compliance: models.ComplianceSafe,
	}
}

func testRepo() *corpus.MemoryRepository {
	return &corpus.MemoryRepository{
		TicketList: []*models.Ticket{
			{ID: "T-1", Issue: "cannot connect to vpn"},
			{ID: "T-2", Issue: "mail stopped syncing"},
		},
	}
}

func newTestWorkflow(t *testing.T, an Analyzer, store session.Store) *Workflow {
	t.Helper()
	w, err := NewWorkflow(an, testRepo(), store, zap.NewNop())
	if err != nil {
		t.Fatalf("NewWorkflow: %v", err)
	}
	return w
}

func TestAnalyzeWithDraftRecordsGapEvents(t *testing.T) {
	store := &session.MemoryStore{}
	w := newTestWorkflow(t, &stubAnalyzer{result: draftResult()}, store)
	ctx := context.Background()

	result, err := w.Analyze(ctx, "T-1")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Draft == "" {
		t.Fatal("expected a draft")
	}
	if w.Cycle() != CycleReady {
		t.Errorf("cycle = %v, want ready", w.Cycle())
	}

	state := w.State()
	if len(state.Events) != 2 {
		t.Fatalf("want gap_detected + draft_proposed, got %+v", state.Events)
	}
	if state.Events[0].Kind != models.EventGapDetected || state.Events[1].Kind != models.EventDraftProposed {
		t.Errorf("event order wrong: %+v", state.Events)
	}
	if state.Events[0].TicketID != "T-1" || state.Events[1].TicketID != "T-1" {
		t.Errorf("events must be tagged with the ticket id: %+v", state.Events)
	}

	// Events were persisted immediately.
	stored, _ := store.Read(ctx)
	if len(stored.Events) != 2 {
		t.Errorf("stored state should match in-memory state, got %+v", stored)
	}
}

func TestAnalyzeWithoutDraftAddsNothing(t *testing.T) {
	store := &session.MemoryStore{}
	w := newTestWorkflow(t, &stubAnalyzer{result: cleanResult()}, store)

	if _, err := w.Analyze(context.Background(), "T-1"); err != nil {
		t.Fatal(err)
	}
	if w.Cycle() != CycleReady {
		t.Errorf("cycle = %v", w.Cycle())
	}
	if state := w.State(); !state.Empty() {
		t.Errorf("no gap means no events, got %+v", state)
	}
	if store.Writes != 0 {
		t.Errorf("nothing to persist, got %d writes", store.Writes)
	}
}

func TestApprovePublishesArticleWithLineage(t *testing.T) {
	store := &session.MemoryStore{}
	w := newTestWorkflow(t, &stubAnalyzer{result: draftResult()}, store)
	ctx := context.Background()

	if _, err := w.Analyze(ctx, "T-1"); err != nil {
		t.Fatal(err)
	}
	article, err := w.Approve(ctx)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if article.Title != "VPN Setup" || article.Body != "Do X then Y." {
		t.Errorf("draft parsing wrong: %+v", article)
	}
	if article.TicketID != "T-1" {
		t.Errorf("article should reference the ticket: %+v", article)
	}
	if w.Cycle() != CyclePublished {
		t.Errorf("cycle = %v, want published", w.Cycle())
	}

	state := w.State()
	if len(state.Learned) != 1 {
		t.Fatalf("learned count = %d, want exactly 1", len(state.Learned))
	}
	if len(state.Lineage) != 1 {
		t.Fatalf("lineage count = %d, want exactly 1", len(state.Lineage))
	}
	lin := state.Lineage[0]
	if lin.KBArticleID != article.ID || lin.SourceType != "Ticket" || lin.SourceID != "T-1" {
		t.Errorf("lineage = %+v", lin)
	}
	if lin.EvidenceSnippet != "Do X then Y." {
		t.Errorf("evidence snippet = %q", lin.EvidenceSnippet)
	}
	if state.Events[len(state.Events)-1].Kind != models.EventApproved {
		t.Errorf("approved event missing: %+v", state.Events)
	}
	if state.Events[len(state.Events)-1].KBID != article.ID {
		t.Error("approved event must carry the new kb id")
	}

	// Stored state equals in-memory state after the write.
	stored, _ := store.Read(ctx)
	if len(stored.Learned) != 1 || len(stored.Lineage) != 1 {
		t.Errorf("stored = %+v", stored)
	}
}

func TestApproveUniqueIDsPerPublish(t *testing.T) {
	store := &session.MemoryStore{}
	w := newTestWorkflow(t, &stubAnalyzer{result: draftResult()}, store)
	ctx := context.Background()

	ids := map[string]bool{}
	for i := 0; i < 3; i++ {
		if _, err := w.Analyze(ctx, "T-1"); err != nil {
			t.Fatal(err)
		}
		article, err := w.Approve(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if ids[article.ID] {
			t.Fatalf("duplicate article id %s", article.ID)
		}
		ids[article.ID] = true
	}
	// Duplicate publishes of the same draft are allowed; three articles exist.
	if got := len(w.State().Learned); got != 3 {
		t.Errorf("learned count = %d", got)
	}
}

func TestDismissDiscardsDraft(t *testing.T) {
	store := &session.MemoryStore{}
	w := newTestWorkflow(t, &stubAnalyzer{result: draftResult()}, store)
	ctx := context.Background()

	if _, err := w.Analyze(ctx, "T-1"); err != nil {
		t.Fatal(err)
	}
	if err := w.Dismiss(ctx); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	if w.Cycle() != CycleIdle {
		t.Errorf("cycle = %v, want idle", w.Cycle())
	}

	state := w.State()
	if len(state.Learned) != 0 || len(state.Lineage) != 0 {
		t.Errorf("dismissal must create no article and no lineage: %+v", state)
	}
	last := state.Events[len(state.Events)-1]
	if last.Kind != models.EventGapDetected || !strings.Contains(last.Label, "dismissed") {
		t.Errorf("dismissal event wrong: %+v", last)
	}

	if err := w.Dismiss(ctx); !errors.Is(err, ErrNoPendingDraft) {
		t.Errorf("second dismiss should fail with ErrNoPendingDraft, got %v", err)
	}
}

func TestApproveWithoutDraft(t *testing.T) {
	w := newTestWorkflow(t, &stubAnalyzer{result: cleanResult()}, &session.MemoryStore{})
	ctx := context.Background()
	if _, err := w.Analyze(ctx, "T-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Approve(ctx); !errors.Is(err, ErrNoPendingDraft) {
		t.Errorf("want ErrNoPendingDraft, got %v", err)
	}
}

func TestPublishedArticlesFeedNextAnalysis(t *testing.T) {
	an := &stubAnalyzer{result: draftResult()}
	w := newTestWorkflow(t, an, &session.MemoryStore{})
	ctx := context.Background()

	if _, err := w.Analyze(ctx, "T-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Approve(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Analyze(ctx, "T-2"); err != nil {
		t.Fatal(err)
	}

	if len(an.learned) != 2 {
		t.Fatalf("analyzer called %d times", len(an.learned))
	}
	if len(an.learned[0]) != 0 {
		t.Errorf("first analysis should see no learned articles")
	}
	if len(an.learned[1]) != 1 || an.learned[1][0].Title != "VPN Setup" {
		t.Errorf("second analysis should see the published article, got %+v", an.learned[1])
	}
}

func TestStaleAnalysisDiscarded(t *testing.T) {
	block := make(chan struct{})
	slow := &stubAnalyzer{result: draftResult(), block: block}
	w := newTestWorkflow(t, slow, &session.MemoryStore{})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := w.Analyze(ctx, "T-1")
		done <- err
	}()

	// Wait for the first analysis to be in flight, then supersede it.
	for {
		slow.mu.Lock()
		inFlight := len(slow.learned) == 1
		if inFlight {
			slow.block = nil
		}
		slow.mu.Unlock()
		if inFlight {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if _, err := w.Analyze(ctx, "T-2"); err != nil {
		t.Fatal(err)
	}
	eventsAfterSecond := len(w.State().Events)

	close(block)
	if err := <-done; !errors.Is(err, ErrStaleAnalysis) {
		t.Fatalf("first analysis should be discarded as stale, got %v", err)
	}
	if got := len(w.State().Events); got != eventsAfterSecond {
		t.Errorf("stale result mutated state: %d -> %d events", eventsAfterSecond, got)
	}
	if w.PendingDraft() == "" {
		t.Error("the latest analysis' draft should remain pending")
	}
}

func TestHydrationRestoresLearnedArticles(t *testing.T) {
	store := &session.MemoryStore{}
	ctx := context.Background()
	seed := &models.SessionState{
		Learned: []models.LearnedArticle{{ID: "LK-1", Title: "Old fix", Body: "b", TicketID: "T-0"}},
		Events:  []models.LearningEvent{{Kind: models.EventApproved, TicketID: "T-0", KBID: "LK-1", Label: "Draft approved and published"}},
		Lineage: []models.LineageRecord{{KBArticleID: "LK-1", SourceType: "Ticket", SourceID: "T-0", EvidenceSnippet: "b"}},
	}
	if err := store.Write(ctx, seed); err != nil {
		t.Fatal(err)
	}

	an := &stubAnalyzer{result: cleanResult()}
	w := newTestWorkflow(t, an, store)
	if _, err := w.Analyze(ctx, "T-1"); err != nil {
		t.Fatal(err)
	}
	if len(an.learned[0]) != 1 || an.learned[0][0].ID != "LK-1" {
		t.Errorf("hydrated articles should reach the analyzer, got %+v", an.learned[0])
	}
}
