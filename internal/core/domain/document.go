package domain

import "time"

// RawDocument represents opaque PDF bytes fetched from a statement source.
// It is the fetcher's output before page classification and extraction.
type RawDocument struct {
	// Name is the stable document name derived from the source
	// (bank, period, language), e.g. "2024_en_q3_consolidated.pdf".
	Name string

	// URI is the original location (download URL or file path).
	URI string

	// Statement carries the metadata parsed from the source path.
	Statement StatementInfo

	// Content is the raw PDF bytes.
	Content []byte

	// FetchedAt is when the bytes were retrieved.
	FetchedAt time.Time
}

// Document is a financial statement after extraction. A re-fetch of the
// same name supersedes the previous document; documents are never merged.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the stable statement name, unique per source document.
	Name string

	// URI is the original location the bytes came from.
	URI string

	// Language is the statement language tag ("en" or "ar").
	Language string

	// Content is the full extracted text, pages concatenated in order.
	Content string

	// Pages holds the per-page classification and text. It can be
	// shorter than PageCount when pages were unrecoverable.
	Pages []Page

	// PageCount is the page count the source reader reported.
	PageCount int

	// Statement carries the parsed period metadata.
	Statement StatementInfo

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-ingested.
	UpdatedAt time.Time
}

// PageClass tags a PDF page by its dominant content.
type PageClass string

const (
	// PageText marks a page with extractable text above the threshold.
	PageText PageClass = "text"

	// PageImage marks a page without extractable text (scanned or chart).
	PageImage PageClass = "image"
)

// Page is a single PDF page after classification. Every page carries
// exactly one class; image pages may have empty Text.
type Page struct {
	// DocumentID links to the parent Document.
	DocumentID string

	// Number is the 1-based page number.
	Number int

	// Class is the classification tag.
	Class PageClass

	// Text is the extracted text. Empty for image pages without OCR.
	Text string
}

// Chunk is a bounded passage of document text sized for embedding.
// Consecutive chunks of one document share a fixed overlap.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// DocumentName is denormalised so search results need no join.
	DocumentName string

	// Language is denormalised from the document.
	Language string

	// Content is the chunk text. Never empty.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Page is the 1-based page the chunk starts on, 0 if unknown.
	Page int

	// Embedding is the vector representation, nil before embedding.
	Embedding []float32
}

// RetrievedChunk pairs a chunk with its similarity score.
type RetrievedChunk struct {
	Chunk Chunk

	// Score is the cosine similarity to the query, higher is closer.
	Score float64
}

// Answer is a completed response with the provenance of the context
// that produced it.
type Answer struct {
	// Text is the full generated answer.
	Text string

	// Sources lists the retrieved chunks the prompt was built from,
	// in the order they appeared in the context.
	Sources []RetrievedChunk
}
