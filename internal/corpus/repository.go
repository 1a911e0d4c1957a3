// Package corpus provides read-only access to the source data: tickets, KB
// articles, and Tier-3 scripts, plus term-overlap search over the two
// knowledge corpora.
package corpus

import (
	"context"
	"errors"

	"github.com/hyperjump/kotae/internal/models"
)

// ErrTicketNotFound is returned when a ticket id is not in the corpus.
var ErrTicketNotFound = errors.New("ticket not found")

// Repository is the data-source collaborator. Corpora load lazily, once, and
// are never mutated; searches implement the term-overlap scoring contract of
// the relevance package.
type Repository interface {
	TicketByID(ctx context.Context, id string) (*models.Ticket, error)
	Tickets(ctx context.Context) ([]*models.Ticket, error)
	KBArticles(ctx context.Context) ([]*models.KnowledgeRecord, error)
	Scripts(ctx context.Context) ([]*models.KnowledgeRecord, error)
	SearchKB(ctx context.Context, terms []string, limit int) ([]*models.ScoredRecord, error)
	SearchScripts(ctx context.Context, terms []string, limit int) ([]*models.ScoredRecord, error)
}
