package driven

import (
	"context"

	"github.com/finsight-labs/finsight/internal/core/domain"
)

// Normaliser transforms raw PDF bytes into a Document: pages classified,
// text extracted in reading order, whitespace normalised. Chunking is
// handled by the PostProcessor pipeline, not here.
type Normaliser interface {
	// Normalise classifies and extracts every page. Unrecoverable
	// pages are skipped, not fatal; a document that yields no pages at
	// all fails with a domain.ErrParse wrap.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error)
}
