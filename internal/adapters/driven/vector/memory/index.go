// Package memory provides an in-memory VectorIndex for tests and
// single-shot runs where no Qdrant server is available.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/finsight-labs/finsight/internal/core/domain"
	"github.com/finsight-labs/finsight/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

type record struct {
	chunk domain.Chunk
	order int
}

// Index is a brute-force cosine-similarity index held in memory.
// Records for an already-stored chunk ID are replaced in place,
// keeping their original insertion order.
type Index struct {
	mu        sync.RWMutex
	dimension int
	records   map[string]*record
	nextOrder int
}

// NewIndex creates an empty in-memory index.
func NewIndex() *Index {
	return &Index{
		records: make(map[string]*record),
	}
}

// EnsureCollection fixes the vector dimension for this index.
func (i *Index) EnsureCollection(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidInput, dimension)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.dimension != 0 && i.dimension != dimension {
		return fmt.Errorf("%w: index holds %d-dimensional vectors, requested %d",
			domain.ErrDimensionMismatch, i.dimension, dimension)
	}
	i.dimension = dimension
	return nil
}

// Upsert stores chunks with their embeddings.
func (i *Index) Upsert(_ context.Context, chunks []domain.Chunk) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, c.ID)
		}
		if i.dimension != 0 && len(c.Embedding) != i.dimension {
			return fmt.Errorf("%w: chunk %s has %d dimensions, index expects %d",
				domain.ErrDimensionMismatch, c.ID, len(c.Embedding), i.dimension)
		}

		if existing, ok := i.records[c.ID]; ok {
			existing.chunk = c
			continue
		}
		i.records[c.ID] = &record{chunk: c, order: i.nextOrder}
		i.nextOrder++
	}
	return nil
}

// Search scans all records and returns the k most similar chunks by
// cosine similarity, ties broken by insertion order.
func (i *Index) Search(_ context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return []domain.RetrievedChunk{}, nil
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	type scored struct {
		rec   *record
		score float64
	}
	candidates := make([]scored, 0, len(i.records))
	for _, rec := range i.records {
		candidates = append(candidates, scored{rec: rec, score: cosine(vector, rec.chunk.Embedding)})
	}

	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].score != candidates[b].score {
			return candidates[a].score > candidates[b].score
		}
		return candidates[a].rec.order < candidates[b].rec.order
	})

	if k > len(candidates) {
		k = len(candidates)
	}

	results := make([]domain.RetrievedChunk, 0, k)
	for _, c := range candidates[:k] {
		results = append(results, domain.RetrievedChunk{Chunk: c.rec.chunk, Score: c.score})
	}
	return results, nil
}

// Count returns the number of stored records.
func (i *Index) Count(_ context.Context) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.records), nil
}

// Ping always succeeds for the in-memory index.
func (i *Index) Ping(_ context.Context) error {
	return nil
}

// Close releases all stored records.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.records = make(map[string]*record)
	return nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for n := range a {
		dot += float64(a[n]) * float64(b[n])
		normA += float64(a[n]) * float64(a[n])
		normB += float64(b[n]) * float64(b[n])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
