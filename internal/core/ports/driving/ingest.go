package driving

import (
	"context"

	"github.com/finsight-labs/finsight/internal/core/ports/driven"
)

// IngestReport summarises one ingestion run. Failures are page-, chunk-
// or document-scoped; a non-empty report with errors still means the
// rest of the batch was ingested.
type IngestReport struct {
	// Documents is the number of documents fully ingested.
	Documents int

	// Skipped is the number of statements already present and unchanged.
	Skipped int

	// TextPages and ImagePages count the page classifications seen.
	TextPages  int
	ImagePages int

	// FailedPages counts pages marked unrecoverable.
	FailedPages int

	// Chunks is the number of chunks embedded and indexed.
	Chunks int

	// Errors lists document-scoped failures, one per failed document.
	Errors []error
}

// Ingestor runs the offline ingestion pipeline: fetch, classify,
// extract, chunk, embed, index.
type Ingestor interface {
	// IngestAll lists the source and ingests every statement not yet
	// present. Document failures are collected in the report; only an
	// unreachable index aborts the run.
	IngestAll(ctx context.Context) (*IngestReport, error)

	// Ingest processes a single statement reference.
	Ingest(ctx context.Context, ref driven.StatementRef) (*IngestReport, error)
}
