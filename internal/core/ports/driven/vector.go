package driven

import (
	"context"

	"github.com/finsight-labs/finsight/internal/core/domain"
)

// VectorIndex persists (vector, chunk, metadata) records and answers
// nearest-neighbour queries by cosine similarity.
//
// Implementations must tolerate concurrent Upsert and Search: a record
// is either absent or fully visible, never half-written. Equal scores
// are broken by insertion order so retrieval stays reproducible.
type VectorIndex interface {
	// EnsureCollection prepares the collection for vectors of the
	// given dimension. Offering a different dimension to an existing
	// collection fails with domain.ErrDimensionMismatch.
	EnsureCollection(ctx context.Context, dimension int) error

	// Upsert stores chunks with their embeddings. Chunks without an
	// embedding are rejected with domain.ErrInvalidInput.
	Upsert(ctx context.Context, chunks []domain.Chunk) error

	// Search returns up to k chunks ordered by descending similarity.
	// An empty index returns an empty slice, never an error.
	Search(ctx context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Ping validates the index is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
