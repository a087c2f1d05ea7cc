package artifact

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ModelClient abstracts the generative model: given a document title and an
// optional case summary, produce the full document text. Implementations
// that stream internally must await and buffer their own stream.
type ModelClient interface {
	GenerateDocument(ctx context.Context, title, contextSummary string) (string, error)
}

// Document is a generated artifact ready for persistence.
type Document struct {
	ID        uuid.UUID
	UserID    string
	Title     string
	Content   string
	Kind      string
	CreatedAt time.Time
}

// DocumentStore persists a generated document. Called exactly once per
// artifact, after its emission completes.
type DocumentStore interface {
	SaveDocument(ctx context.Context, doc Document) error
}
