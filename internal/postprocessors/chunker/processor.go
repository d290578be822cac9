// Package chunker provides a fixed-size overlapping text chunking processor.
package chunker

import (
	"context"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/finsight-labs/finsight/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of characters shared
// between consecutive chunks.
const DefaultChunkOverlap = 200

// Processor splits document content into overlapping fixed-size chunks.
// Sizes are measured in runes so multi-byte statement text (Arabic
// filings in particular) never splits inside a character.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Overlap must leave a positive stride
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks. Consecutive chunks
// share exactly the configured overlap; the final chunk may be shorter
// than the chunk size; empty chunks are never produced.
// Input chunks are ignored; this processor creates chunks from content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.Content == "" {
		// Empty content produces no chunks
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runes := []rune(doc.Content)
	total := len(runes)
	stride := p.chunkSize - p.overlap

	pages := pageMarkers(doc.Content)

	chunks := make([]domain.Chunk, 0, total/stride+1)
	position := 0

	for start := 0; start < total; start += stride {
		end := start + p.chunkSize
		if end > total {
			end = total
		}

		chunks = append(chunks, domain.Chunk{
			ID:           uuid.New().String(),
			DocumentID:   doc.ID,
			DocumentName: doc.Name,
			Language:     doc.Language,
			Content:      string(runes[start:end]),
			Position:     position,
			Page:         pageAt(pages, start),
		})
		position++

		if end == total {
			break
		}
	}

	return chunks, nil
}

var pageHeadingRe = regexp.MustCompile(`## Page (\d+)`)

// pageMarker maps a rune offset in the combined text to the page that
// starts there.
type pageMarker struct {
	offset int
	page   int
}

// pageMarkers finds the "## Page N" headings the extractor writes, as
// rune offsets. Documents from other origins simply have none.
func pageMarkers(content string) []pageMarker {
	idx := pageHeadingRe.FindAllStringSubmatchIndex(content, -1)
	if len(idx) == 0 {
		return nil
	}

	// Byte offset to rune offset, taking advantage of matches being
	// in ascending order.
	markers := make([]pageMarker, 0, len(idx))
	runeOff, byteOff := 0, 0
	for _, m := range idx {
		runeOff += utf8.RuneCountInString(content[byteOff:m[0]])
		byteOff = m[0]
		page, err := strconv.Atoi(content[m[2]:m[3]])
		if err != nil {
			continue
		}
		markers = append(markers, pageMarker{offset: runeOff, page: page})
	}
	return markers
}

// pageAt returns the page containing the given rune offset, 0 when the
// content has no page markers.
func pageAt(markers []pageMarker, offset int) int {
	page := 0
	for _, m := range markers {
		if m.offset > offset {
			break
		}
		page = m.page
	}
	if page == 0 && len(markers) > 0 {
		// Before the first marker (the "File:" preamble).
		page = markers[0].page
	}
	return page
}
