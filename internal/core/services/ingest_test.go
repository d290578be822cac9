package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finsight/internal/core/domain"
	"github.com/finsight-labs/finsight/internal/core/ports/driven"
)

func statementRef(url, year, quarter string) driven.StatementRef {
	return driven.StatementRef{
		URL: url,
		Statement: domain.StatementInfo{
			Year:     year,
			Language: "en",
			Quarter:  quarter,
			Scope:    domain.ScopeConsolidated,
		},
	}
}

type ingestFixture struct {
	source   *fakeSource
	index    *fakeIndex
	docStore *fakeDocStore
	service  *IngestService
}

func newIngestFixture(refs []driven.StatementRef, opts ...IngestOption) *ingestFixture {
	f := &ingestFixture{
		source:   &fakeSource{refs: refs, downloadErr: map[string]error{}},
		index:    &fakeIndex{},
		docStore: newFakeDocStore(),
	}
	f.service = NewIngestService(
		f.source,
		&fakeNormaliser{perName: map[string]error{}},
		&fakePipeline{},
		&fakeEmbedder{},
		f.index,
		f.docStore,
		opts...,
	)
	return f
}

func TestIngestAll_FullPipeline(t *testing.T) {
	f := newIngestFixture([]driven.StatementRef{
		statementRef("https://bank.example/a.pdf", "2023", domain.Q1),
		statementRef("https://bank.example/b.pdf", "2023", domain.Q2),
	})

	report, err := f.service.IngestAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Documents)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 2, report.TextPages)
	assert.Equal(t, 2, report.ImagePages)
	assert.Equal(t, 4, report.Chunks)
	assert.Empty(t, report.Errors)

	// Collection prepared with the embedder's dimension.
	assert.Equal(t, 3, f.index.dimension)

	// Every chunk indexed with an embedding.
	assert.Len(t, f.index.upserted, 4)
	for _, c := range f.index.upserted {
		assert.NotEmpty(t, c.Embedding)
	}

	// Documents, pages and chunks persisted.
	doc, err := f.docStore.GetDocumentByName(context.Background(), "2023_en_q1_consolidated.pdf")
	require.NoError(t, err)
	pages, _ := f.docStore.GetPages(context.Background(), doc.ID)
	assert.Len(t, pages, 2)
	chunks, _ := f.docStore.GetChunks(context.Background(), doc.ID)
	assert.Len(t, chunks, 2)
}

func TestIngestAll_SkipsAlreadyIngested(t *testing.T) {
	ref := statementRef("https://bank.example/a.pdf", "2023", domain.Q1)
	f := newIngestFixture([]driven.StatementRef{ref})

	_, err := f.service.IngestAll(context.Background())
	require.NoError(t, err)

	report, err := f.service.IngestAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Documents)
	assert.Equal(t, 1, report.Skipped)
}

func TestIngestAll_ForceReingests(t *testing.T) {
	ref := statementRef("https://bank.example/a.pdf", "2023", domain.Q1)
	f := newIngestFixture([]driven.StatementRef{ref}, WithForce(true))

	_, err := f.service.IngestAll(context.Background())
	require.NoError(t, err)

	report, err := f.service.IngestAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Documents)
	assert.Equal(t, 0, report.Skipped)
}

func TestIngestAll_DocumentFailureDoesNotAbortRun(t *testing.T) {
	good := statementRef("https://bank.example/good.pdf", "2023", domain.Q1)
	bad := statementRef("https://bank.example/bad.pdf", "2023", domain.Q2)

	f := newIngestFixture([]driven.StatementRef{bad, good})
	f.source.downloadErr[bad.URL] = domain.ErrFetch

	report, err := f.service.IngestAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Documents)
	require.Len(t, report.Errors, 1)
	assert.ErrorIs(t, report.Errors[0], domain.ErrFetch)
	assert.Contains(t, report.Errors[0].Error(), "2023_en_q2_consolidated.pdf")
}

func TestIngestAll_IndexUnavailableAborts(t *testing.T) {
	refs := []driven.StatementRef{
		statementRef("https://bank.example/a.pdf", "2023", domain.Q1),
		statementRef("https://bank.example/b.pdf", "2023", domain.Q2),
	}
	f := newIngestFixture(refs)
	f.index.upsertErr = domain.ErrIndexUnavailable

	report, err := f.service.IngestAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	assert.Equal(t, 0, report.Documents)
}

func TestIngestAll_EnsureCollectionFailureAborts(t *testing.T) {
	f := newIngestFixture(nil)
	f.index.ensureErr = domain.ErrIndexUnavailable

	_, err := f.service.IngestAll(context.Background())
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestIngestAll_ListFailure(t *testing.T) {
	f := newIngestFixture(nil)
	f.source.listErr = errors.New("site down")

	_, err := f.service.IngestAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing statements")
}

func TestIngest_SingleStatement(t *testing.T) {
	ref := statementRef("https://bank.example/a.pdf", "2024", domain.Q3)
	f := newIngestFixture(nil)

	report, err := f.service.Ingest(context.Background(), ref)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Documents)
	assert.Equal(t, 2, report.Chunks)

	_, err = f.docStore.GetDocumentByName(context.Background(), "2024_en_q3_consolidated.pdf")
	assert.NoError(t, err)
}

func TestIngest_CountsUnrecoverablePages(t *testing.T) {
	ref := statementRef("https://bank.example/a.pdf", "2023", domain.Q1)

	// The reader reports three pages but only two could be recovered.
	// The shortfall must show up even when the lost page is the last
	// one, where page numbers alone cannot reveal it.
	f := newIngestFixture(nil)
	f.service.normaliser = &fakeNormaliser{pageCount: 3}

	report, err := f.service.Ingest(context.Background(), ref)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Documents)
	assert.Equal(t, 1, report.FailedPages)
}

func TestIngest_ParseFailureReported(t *testing.T) {
	ref := statementRef("https://bank.example/corrupt.pdf", "2023", domain.Q1)

	f := newIngestFixture(nil)
	f.service.normaliser = &fakeNormaliser{err: domain.ErrParse}

	report, err := f.service.Ingest(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Documents)
	require.Len(t, report.Errors, 1)
	assert.ErrorIs(t, report.Errors[0], domain.ErrParse)
}

func TestIngestAll_ContextCancelled(t *testing.T) {
	f := newIngestFixture([]driven.StatementRef{
		statementRef("https://bank.example/a.pdf", "2023", domain.Q1),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.IngestAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
