package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finsight/internal/core/domain"
	"github.com/finsight-labs/finsight/internal/core/ports/driven"
	"github.com/finsight-labs/finsight/internal/core/ports/driving"
)

func TestIngestCmd_All(t *testing.T) {
	resetServices(t)
	stub := &stubIngestor{report: &driving.IngestReport{
		Documents:  2,
		Skipped:    1,
		TextPages:  10,
		ImagePages: 3,
		Chunks:     40,
	}}
	ingestService = stub

	out, err := execute(t, "ingest")
	require.NoError(t, err)

	assert.Contains(t, out, "Documents ingested: 2")
	assert.Contains(t, out, "Skipped (already present): 1")
	assert.Contains(t, out, "Pages: 10 text, 3 image, 0 failed")
	assert.Contains(t, out, "Chunks indexed: 40")
}

func TestIngestCmd_LocalPath(t *testing.T) {
	resetServices(t)
	stub := &stubIngestor{report: &driving.IngestReport{Documents: 1, Chunks: 5}}
	ingestService = stub

	out, err := execute(t, "ingest", "statements/2023-q2-consolidated.pdf")
	require.NoError(t, err)

	assert.Contains(t, out, "Documents ingested: 1")
	assert.True(t, filepath.IsAbs(stub.lastRef.URL))
	assert.Equal(t, "2023", stub.lastRef.Statement.Year)
	assert.Equal(t, domain.Q2, stub.lastRef.Statement.Quarter)
	assert.Equal(t, "en", stub.lastRef.Statement.Language)
}

func TestIngestCmd_LanguageFlag(t *testing.T) {
	resetServices(t)
	stub := &stubIngestor{report: &driving.IngestReport{Documents: 1}}
	ingestService = stub

	_, err := execute(t, "ingest", "--language", "ar", "2023-q1.pdf")
	require.NoError(t, err)
	assert.Equal(t, "ar", stub.lastRef.Statement.Language)
}

func TestIngestCmd_ReportsFailures(t *testing.T) {
	resetServices(t)
	ingestService = &stubIngestor{report: &driving.IngestReport{
		Documents: 1,
		Errors:    []error{domain.ErrParse},
	}}

	out, err := execute(t, "ingest")
	require.Error(t, err)
	assert.Contains(t, out, "Failures (1):")
	assert.Contains(t, err.Error(), "1 statements failed")
}

func TestIngestCmd_IndexUnavailableAborts(t *testing.T) {
	resetServices(t)
	ingestService = &stubIngestor{
		report: &driving.IngestReport{},
		err:    domain.ErrIndexUnavailable,
	}

	_, err := execute(t, "ingest")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestIngestCmd_NotConfigured(t *testing.T) {
	resetServices(t)

	_, err := execute(t, "ingest")
	assert.Error(t, err)
}

// watchingSource pushes canned watch events.
type watchingSource struct {
	stubSource
	events chan driven.WatchEvent
}

func (w *watchingSource) Watch(context.Context) (<-chan driven.WatchEvent, error) {
	return w.events, nil
}

func TestIngestCmd_WatchIngestsNewStatements(t *testing.T) {
	resetServices(t)
	ingestService = &stubIngestor{report: &driving.IngestReport{Documents: 1, Chunks: 3}}

	events := make(chan driven.WatchEvent, 1)
	events <- driven.WatchEvent{Ref: driven.StatementRef{
		URL:       "/statements/2023-q1-consolidated.pdf",
		Statement: domain.ParseStatementURL("/statements/2023-q1-consolidated.pdf", "en"),
	}}
	close(events)
	statementSource = &watchingSource{events: events}

	out, err := execute(t, "ingest", "--watch")
	require.NoError(t, err)

	assert.Contains(t, out, "Watching for new statements")
	assert.Contains(t, out, "New statement: 2023_en_q1_consolidated.pdf")
	assert.Contains(t, out, "Chunks indexed: 3")
}

func TestIngestCmd_WatchUnsupportedSource(t *testing.T) {
	resetServices(t)
	ingestService = &stubIngestor{report: &driving.IngestReport{}}
	statementSource = &stubSource{}

	_, err := execute(t, "ingest", "--watch")
	assert.ErrorContains(t, err, "does not support watching")
}
