package domain

import "errors"

// Pipeline errors. Each stage wraps its sentinel so callers can scope
// failure handling with errors.Is: fetch and parse failures are skipped
// per document or page, embedding failures per chunk, while index and
// generation failures surface to the caller.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFetch indicates the source site or a download was unavailable.
	// Retryable with backoff, bounded attempts.
	ErrFetch = errors.New("fetch failed")

	// ErrParse indicates a malformed PDF or page. The page or document
	// is skipped and the batch continues.
	ErrParse = errors.New("parse failed")

	// ErrEmbedding indicates the embedding model was unavailable or the
	// input was rejected. The chunk is skipped and the batch continues.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndexUnavailable indicates the vector store is unreachable.
	// The operation fails and the error surfaces to the caller.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrGeneration indicates the LLM stream failed. Partial output
	// already delivered is preserved; the error is surfaced once.
	ErrGeneration = errors.New("generation failed")

	// ErrDimensionMismatch indicates vectors from an incompatible
	// embedding model were offered to the index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
