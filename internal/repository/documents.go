package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Document is one persisted version of a generated artifact. Saving the
// same id again appends a version rather than overwriting.
type Document struct {
	ID        uuid.UUID
	UserID    string
	Title     string
	Content   string
	Kind      string
	CreatedAt time.Time
}

// DocumentRepository is the persistence surface for generated artifacts.
type DocumentRepository interface {
	Save(ctx context.Context, doc Document) error
	// ListVersions returns every version of one document owned by the
	// given user, oldest first.
	ListVersions(ctx context.Context, userID string, id uuid.UUID) ([]Document, error)
}

// PGDocumentRepository stores documents in Postgres.
type PGDocumentRepository struct {
	pool *pgxpool.Pool
}

func NewPGDocumentRepository(pool *pgxpool.Pool) *PGDocumentRepository {
	return &PGDocumentRepository{pool: pool}
}

func (r *PGDocumentRepository) Save(ctx context.Context, doc Document) error {
	const q = `
		INSERT INTO document (id, user_id, title, content, kind, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.pool.Exec(ctx, q, doc.ID, doc.UserID, doc.Title, doc.Content, doc.Kind, doc.CreatedAt); err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	return nil
}

func (r *PGDocumentRepository) ListVersions(ctx context.Context, userID string, id uuid.UUID) ([]Document, error) {
	const q = `
		SELECT id, user_id, title, content, kind, created_at
		FROM document
		WHERE id = $1 AND user_id = $2
		ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, q, id, userID)
	if err != nil {
		return nil, fmt.Errorf("list document versions %s: %w", id, err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.UserID, &d.Title, &d.Content, &d.Kind, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
