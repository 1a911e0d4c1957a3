package corpus

import (
	"context"
	"fmt"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/relevance"
)

// MemoryRepository serves fixed in-memory corpora. Used in tests and anywhere
// the workbook round-trip is unnecessary.
type MemoryRepository struct {
	TicketList []*models.Ticket
	KB         []*models.KnowledgeRecord
	ScriptList []*models.KnowledgeRecord
}

// TicketByID returns the ticket with the given id.
func (m *MemoryRepository) TicketByID(ctx context.Context, id string) (*models.Ticket, error) {
	for _, t := range m.TicketList {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
}

// Tickets returns the full ticket corpus.
func (m *MemoryRepository) Tickets(ctx context.Context) ([]*models.Ticket, error) {
	return m.TicketList, nil
}

// KBArticles returns the full KB corpus.
func (m *MemoryRepository) KBArticles(ctx context.Context) ([]*models.KnowledgeRecord, error) {
	return m.KB, nil
}

// Scripts returns the full script corpus.
func (m *MemoryRepository) Scripts(ctx context.Context) ([]*models.KnowledgeRecord, error) {
	return m.ScriptList, nil
}

// SearchKB scores the KB corpus against terms.
func (m *MemoryRepository) SearchKB(ctx context.Context, terms []string, limit int) ([]*models.ScoredRecord, error) {
	return relevance.Search(m.KB, terms, limit), nil
}

// SearchScripts scores the script corpus against terms.
func (m *MemoryRepository) SearchScripts(ctx context.Context, terms []string, limit int) ([]*models.ScoredRecord, error) {
	return relevance.Search(m.ScriptList, terms, limit), nil
}
