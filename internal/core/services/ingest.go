package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/finsight-labs/finsight/internal/core/domain"
	"github.com/finsight-labs/finsight/internal/core/ports/driven"
	"github.com/finsight-labs/finsight/internal/core/ports/driving"
	"github.com/finsight-labs/finsight/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// IngestService runs the offline pipeline: fetch, classify, extract,
// chunk, embed, index. Failures are scoped: a broken page skips the
// page, a broken document skips the document, and only an unreachable
// index aborts the whole run.
type IngestService struct {
	source     driven.StatementSource
	normaliser driven.Normaliser
	pipeline   driven.PostProcessorPipeline
	embedder   driven.EmbeddingService
	index      driven.VectorIndex
	docStore   driven.DocumentStore
	force      bool
}

// IngestOption configures the ingest service.
type IngestOption func(*IngestService)

// WithForce re-ingests statements that are already stored.
func WithForce(force bool) IngestOption {
	return func(s *IngestService) {
		s.force = force
	}
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	source driven.StatementSource,
	normaliser driven.Normaliser,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	docStore driven.DocumentStore,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		source:     source,
		normaliser: normaliser,
		pipeline:   pipeline,
		embedder:   embedder,
		index:      index,
		docStore:   docStore,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestAll lists the source and ingests every statement not yet
// present.
func (s *IngestService) IngestAll(ctx context.Context) (*driving.IngestReport, error) {
	if err := s.index.EnsureCollection(ctx, s.embedder.Dimensions()); err != nil {
		return nil, fmt.Errorf("preparing index: %w", err)
	}

	refs, err := s.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing statements: %w", err)
	}
	logger.Info("discovered %d statements", len(refs))

	report := &driving.IngestReport{}
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if err := s.ingestOne(ctx, ref, report); err != nil {
			if errors.Is(err, domain.ErrIndexUnavailable) {
				return report, err
			}
			logger.Warn("ingesting %s failed: %v", ref.Name(), err)
			report.Errors = append(report.Errors, fmt.Errorf("%s: %w", ref.Name(), err))
		}
	}

	logger.Info("ingested %d documents (%d skipped, %d failed)",
		report.Documents, report.Skipped, len(report.Errors))
	return report, nil
}

// Ingest processes a single statement reference.
func (s *IngestService) Ingest(ctx context.Context, ref driven.StatementRef) (*driving.IngestReport, error) {
	if err := s.index.EnsureCollection(ctx, s.embedder.Dimensions()); err != nil {
		return nil, fmt.Errorf("preparing index: %w", err)
	}

	report := &driving.IngestReport{}
	if err := s.ingestOne(ctx, ref, report); err != nil {
		if errors.Is(err, domain.ErrIndexUnavailable) {
			return report, err
		}
		report.Errors = append(report.Errors, fmt.Errorf("%s: %w", ref.Name(), err))
	}
	return report, nil
}

// ingestOne runs the full pipeline for one statement, accumulating
// counters into the report.
func (s *IngestService) ingestOne(ctx context.Context, ref driven.StatementRef, report *driving.IngestReport) error {
	name := ref.Name()

	if !s.force {
		if _, err := s.docStore.GetDocumentByName(ctx, name); err == nil {
			logger.Debug("skipping %s, already ingested", name)
			report.Skipped++
			return nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("checking for %s: %w", name, err)
		}
	}

	logger.Section("Ingesting %s", name)

	raw, err := s.source.Download(ctx, ref)
	if err != nil {
		return err
	}

	doc, err := s.normaliser.Normalise(ctx, raw)
	if err != nil {
		return err
	}

	for _, page := range doc.Pages {
		switch page.Class {
		case domain.PageText:
			report.TextPages++
		case domain.PageImage:
			report.ImagePages++
		}
	}
	report.FailedPages += pagesMissing(doc)

	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	// Index first: a stored document with no vectors would silently
	// drop out of retrieval.
	if err := s.index.Upsert(ctx, chunks); err != nil {
		return err
	}

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return err
	}
	if err := s.docStore.SavePages(ctx, doc.Pages); err != nil {
		return err
	}
	if err := s.docStore.SaveChunks(ctx, chunks); err != nil {
		return err
	}

	report.Documents++
	report.Chunks += len(chunks)
	logger.Info("%s: %d pages, %d chunks", name, len(doc.Pages), len(chunks))
	return nil
}

// pagesMissing counts the pages the reader could not recover at all,
// using the reader's reported page count. Without a reported count it
// falls back to the highest recovered page number, which cannot see
// unrecoverable trailing pages.
func pagesMissing(doc *domain.Document) int {
	if doc.PageCount > 0 {
		return doc.PageCount - len(doc.Pages)
	}
	if len(doc.Pages) == 0 {
		return 0
	}
	max := 0
	for _, p := range doc.Pages {
		if p.Number > max {
			max = p.Number
		}
	}
	return max - len(doc.Pages)
}
