package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lib/pq"

	apperrors "github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/postgres"
)

// schema is applied in order by Migrate. tokens is NULL unless the
// document was stored pre-tokenized.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS lsi_documents (
	id           TEXT PRIMARY KEY DEFAULT md5(random()::text || clock_timestamp()::text),
	title        TEXT NOT NULL DEFAULT '',
	body         TEXT NOT NULL,
	content_hash TEXT NOT NULL UNIQUE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`ALTER TABLE lsi_documents ADD COLUMN IF NOT EXISTS tokens TEXT[]`,
}

// PostgresStore keeps documents in the lsi_documents table.
type PostgresStore struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewPostgresStore wraps an open client.
func NewPostgresStore(db *postgres.Client) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: slog.Default().With("component", "document-store"),
	}
}

// Migrate creates or upgrades the documents table.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating lsi_documents: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Document, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT id, title, body, tokens, created_at FROM lsi_documents ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()
	docs := make([]Document, 0)
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Title, &d.Body, pq.Array(&d.Tokens), &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

func (s *PostgresStore) Add(ctx context.Context, doc Document) (Document, error) {
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`INSERT INTO lsi_documents (id, title, body, tokens, content_hash, created_at)
		VALUES (COALESCE($1, md5(random()::text || clock_timestamp()::text)), $2, $3, $4, $5, COALESCE($6, NOW()))
		ON CONFLICT DO NOTHING
		RETURNING id, created_at`,
			nullableString(doc.ID), doc.Title, doc.Body, pq.Array(doc.Tokens), doc.ContentHash(), nullableTime(doc.CreatedAt))
		err := row.Scan(&doc.ID, &doc.CreatedAt)
		if err == sql.ErrNoRows {
			return apperrors.New(apperrors.ErrDocumentExists, http.StatusConflict, "document id or text already stored")
		}
		return err
	})
	if err != nil {
		return Document{}, fmt.Errorf("inserting document: %w", err)
	}
	s.logger.Debug("document stored", "doc_id", doc.ID)
	return doc, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM lsi_documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// nullableString converts a Go string to a sql.NullString, treating the
// empty string as NULL.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
