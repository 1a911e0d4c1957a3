package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotae/internal/models"
)

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS learned_articles (
		position INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		ticket_id TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS learning_events (
		position INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		ticket_id TEXT NOT NULL,
		kb_id TEXT,
		label TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS lineage_records (
		position INTEGER PRIMARY KEY AUTOINCREMENT,
		kb_article_id TEXT NOT NULL,
		source_type TEXT NOT NULL,
		source_id TEXT NOT NULL,
		evidence_snippet TEXT NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Read loads the full session state. An empty database yields an empty state,
// not an error.
func (s *SQLiteStore) Read(ctx context.Context) (*models.SessionState, error) {
	state := &models.SessionState{
		Learned: []models.LearnedArticle{},
		Events:  []models.LearningEvent{},
		Lineage: []models.LineageRecord{},
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, body, ticket_id FROM learned_articles ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("read learned articles: %w", err)
	}
	for rows.Next() {
		var a models.LearnedArticle
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.TicketID); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan learned article: %w", err)
		}
		state.Learned = append(state.Learned, a)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT kind, ticket_id, COALESCE(kb_id, ''), label, timestamp FROM learning_events ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("read learning events: %w", err)
	}
	for rows.Next() {
		var e models.LearningEvent
		var kind string
		var ts time.Time
		if err := rows.Scan(&kind, &e.TicketID, &e.KBID, &e.Label, &ts); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan learning event: %w", err)
		}
		e.Kind = models.EventKind(kind)
		e.Timestamp = ts
		state.Events = append(state.Events, e)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT kb_article_id, source_type, source_id, evidence_snippet FROM lineage_records ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("read lineage: %w", err)
	}
	for rows.Next() {
		var l models.LineageRecord
		if err := rows.Scan(&l.KBArticleID, &l.SourceType, &l.SourceID, &l.EvidenceSnippet); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan lineage record: %w", err)
		}
		state.Lineage = append(state.Lineage, l)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	return state, nil
}

// Write replaces the stored state in one transaction. The state is small (one
// operator session), so a full rewrite is simpler and safer than diffing the
// append-only logs. An empty state never overwrites a non-empty stored one.
func (s *SQLiteStore) Write(ctx context.Context, state *models.SessionState) error {
	if state.Empty() {
		stored, err := s.Read(ctx)
		if err != nil {
			return err
		}
		if !stored.Empty() {
			return nil
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"learned_articles", "learning_events", "lineage_records"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, a := range state.Learned {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO learned_articles (id, title, body, ticket_id) VALUES (?, ?, ?, ?)`,
			a.ID, a.Title, a.Body, a.TicketID); err != nil {
			return fmt.Errorf("write learned article: %w", err)
		}
	}
	for _, e := range state.Events {
		kbID := sql.NullString{String: e.KBID, Valid: e.KBID != ""}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO learning_events (kind, ticket_id, kb_id, label, timestamp) VALUES (?, ?, ?, ?, ?)`,
			string(e.Kind), e.TicketID, kbID, e.Label, e.Timestamp); err != nil {
			return fmt.Errorf("write learning event: %w", err)
		}
	}
	for _, l := range state.Lineage {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO lineage_records (kb_article_id, source_type, source_id, evidence_snippet) VALUES (?, ?, ?, ?)`,
			l.KBArticleID, l.SourceType, l.SourceID, l.EvidenceSnippet); err != nil {
			return fmt.Errorf("write lineage record: %w", err)
		}
	}

	return tx.Commit()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
