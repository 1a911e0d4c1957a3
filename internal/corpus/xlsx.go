package corpus

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/relevance"
)

// Sheet names expected in the corpus workbook.
const (
	ticketSheet = "Tickets"
	kbSheet     = "KnowledgeBase"
	scriptSheet = "Scripts"
)

// XLSXRepository loads the three corpora from one Excel workbook. The load
// happens once, on first access; Invalidate drops the cache so the next
// access re-reads the file.
type XLSXRepository struct {
	path   string
	logger *zap.Logger

	mu      sync.Mutex
	loaded  bool
	tickets []*models.Ticket
	kb      []*models.KnowledgeRecord
	scripts []*models.KnowledgeRecord
}

// NewXLSXRepository creates a repository backed by the workbook at path.
// The file is not opened until the first read.
func NewXLSXRepository(path string, logger *zap.Logger) *XLSXRepository {
	return &XLSXRepository{path: path, logger: logger}
}

// Invalidate drops the cached corpora. The next access reloads the workbook.
func (r *XLSXRepository) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded = false
	r.tickets = nil
	r.kb = nil
	r.scripts = nil
	r.logger.Info("corpus cache invalidated", zap.String("path", r.path))
}

// ensureLoaded reads the workbook if the cache is empty. Caller must not hold mu.
func (r *XLSXRepository) ensureLoaded() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return nil
	}

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return fmt.Errorf("open corpus workbook: %w", err)
	}
	defer f.Close()

	tickets, err := readSheet(f, ticketSheet)
	if err != nil {
		return err
	}
	kbRows, err := readSheet(f, kbSheet)
	if err != nil {
		return err
	}
	scriptRows, err := readSheet(f, scriptSheet)
	if err != nil {
		return err
	}

	r.tickets = ticketsFromRows(tickets)
	r.kb = recordsFromRows(kbRows, models.KindKB)
	r.scripts = recordsFromRows(scriptRows, models.KindScript)
	r.loaded = true
	r.logger.Info("corpus loaded",
		zap.String("path", r.path),
		zap.Int("tickets", len(r.tickets)),
		zap.Int("kb_articles", len(r.kb)),
		zap.Int("scripts", len(r.scripts)))
	return nil
}

// row is one data row keyed by lowercased header name.
type row map[string]string

// readSheet returns the sheet's data rows keyed by the header row. A missing
// sheet is not an error; it yields no rows.
func readSheet(f *excelize.File, sheet string) ([]row, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		if strings.Contains(err.Error(), "doesn't exist") {
			return nil, nil
		}
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	out := make([]row, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		rec := row{}
		for i, cell := range cells {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			rec[headers[i]] = strings.TrimSpace(cell)
		}
		if len(rec) > 0 {
			out = append(out, rec)
		}
	}
	return out, nil
}

// take removes and returns the first matching column from the row.
func (r row) take(names ...string) string {
	for _, n := range names {
		if v, ok := r[n]; ok {
			delete(r, n)
			return v
		}
	}
	return ""
}

// extra returns whatever columns remain after the known ones were taken.
func (r row) extra() map[string]string {
	if len(r) == 0 {
		return nil
	}
	out := make(map[string]string, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func ticketsFromRows(rows []row) []*models.Ticket {
	out := []*models.Ticket{}
	for _, rec := range rows {
		t := &models.Ticket{
			ID:       rec.take("id", "ticket_id"),
			Subject:  rec.take("subject", "title"),
			Issue:    rec.take("issue", "description", "transcript"),
			Customer: rec.take("customer", "customer_name"),
		}
		if t.ID == "" {
			continue
		}
		t.Extra = rec.extra()
		out = append(out, t)
	}
	return out
}

func recordsFromRows(rows []row, kind models.RecordKind) []*models.KnowledgeRecord {
	out := []*models.KnowledgeRecord{}
	for _, rec := range rows {
		k := &models.KnowledgeRecord{
			ID:       rec.take("id", "article_id", "script_id"),
			Kind:     kind,
			Title:    rec.take("title", "name"),
			Body:     rec.take("body", "content", "purpose"),
			Category: rec.take("category"),
		}
		if k.ID == "" {
			continue
		}
		if tags := rec.take("tags"); tags != "" {
			for _, tag := range strings.Split(tags, ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					k.Tags = append(k.Tags, tag)
				}
			}
		}
		k.Extra = rec.extra()
		out = append(out, k)
	}
	return out
}

// TicketByID returns the ticket with the given id.
func (r *XLSXRepository) TicketByID(ctx context.Context, id string) (*models.Ticket, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tickets {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
}

// Tickets returns the full ticket corpus in workbook order.
func (r *XLSXRepository) Tickets(ctx context.Context) ([]*models.Ticket, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tickets, nil
}

// KBArticles returns the full KB corpus in workbook order.
func (r *XLSXRepository) KBArticles(ctx context.Context) ([]*models.KnowledgeRecord, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.kb, nil
}

// Scripts returns the full script corpus in workbook order.
func (r *XLSXRepository) Scripts(ctx context.Context) ([]*models.KnowledgeRecord, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scripts, nil
}

// SearchKB scores the KB corpus against terms.
func (r *XLSXRepository) SearchKB(ctx context.Context, terms []string, limit int) ([]*models.ScoredRecord, error) {
	articles, err := r.KBArticles(ctx)
	if err != nil {
		return nil, err
	}
	return relevance.Search(articles, terms, limit), nil
}

// SearchScripts scores the script corpus against terms.
func (r *XLSXRepository) SearchScripts(ctx context.Context, terms []string, limit int) ([]*models.ScoredRecord, error) {
	scripts, err := r.Scripts(ctx)
	if err != nil {
		return nil, err
	}
	return relevance.Search(scripts, terms, limit), nil
}
