package driven

import (
	"context"

	"github.com/finsight-labs/finsight/internal/core/domain"
)

// DocumentStore persists documents, pages and chunks locally.
// Backed by SQLite; used for ingestion coverage reporting and for
// skipping already-ingested statements.
type DocumentStore interface {
	// SaveDocument stores or supersedes a document by ID.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SavePages stores the per-page classification for a document,
	// replacing any previous pages.
	SavePages(ctx context.Context, pages []domain.Page) error

	// SaveChunks stores chunks with embeddings for a document.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocumentByName retrieves a document by its statement name.
	GetDocumentByName(ctx context.Context, name string) (*domain.Document, error)

	// GetPages retrieves the pages of a document in page order.
	GetPages(ctx context.Context, documentID string) ([]domain.Page, error)

	// GetChunks retrieves the chunks of a document in position order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// ListDocuments returns all stored documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document with its pages and chunks.
	DeleteDocument(ctx context.Context, id string) error
}
