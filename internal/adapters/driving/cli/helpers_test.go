package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/finsight-labs/finsight/internal/core/domain"
	"github.com/finsight-labs/finsight/internal/core/ports/driven"
	"github.com/finsight-labs/finsight/internal/core/ports/driving"
)

// execute runs the root command with args and captures output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetServices clears all injected services after a test.
func resetServices(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		Configure(Deps{})
		ingestService = nil
		answerService = nil
		statementSource = nil
		docStore = nil
		vectorIndex = nil
		embeddingService = nil
		llmService = nil

		// Flag values persist on the package-level commands.
		askTopK = 0
		askNoStream = false
		ingestLanguage = "en"
		ingestWatch = false
		verbose = false
	})
}

// stubIngestor returns canned reports.
type stubIngestor struct {
	report  *driving.IngestReport
	err     error
	lastRef driven.StatementRef
}

func (s *stubIngestor) IngestAll(context.Context) (*driving.IngestReport, error) {
	return s.report, s.err
}

func (s *stubIngestor) Ingest(_ context.Context, ref driven.StatementRef) (*driving.IngestReport, error) {
	s.lastRef = ref
	return s.report, s.err
}

// stubAnswerer returns canned answers.
type stubAnswerer struct {
	answer       *domain.Answer
	tokens       []string
	sources      []domain.RetrievedChunk
	streamErr    error
	err          error
	preflightErr error
	lastQuestion string
	lastOpts     driving.AskOptions
}

func (s *stubAnswerer) Context(_ context.Context, question string, opts driving.AskOptions) ([]domain.RetrievedChunk, string, error) {
	return s.sources, "", s.err
}

func (s *stubAnswerer) Ask(_ context.Context, question string, opts driving.AskOptions) (*domain.Answer, error) {
	s.lastQuestion = question
	s.lastOpts = opts
	return s.answer, s.err
}

func (s *stubAnswerer) AskStream(_ context.Context, question string, opts driving.AskOptions) (*driving.StreamingAnswer, error) {
	s.lastQuestion = question
	s.lastOpts = opts
	if s.err != nil {
		return nil, s.err
	}

	tokens := make(chan string, len(s.tokens))
	errs := make(chan error, 1)
	for _, tok := range s.tokens {
		tokens <- tok
	}
	if s.streamErr != nil {
		errs <- s.streamErr
	}
	close(tokens)
	close(errs)

	return &driving.StreamingAnswer{
		Sources: s.sources,
		Tokens:  tokens,
		Errs:    errs,
	}, nil
}

func (s *stubAnswerer) Preflight(context.Context) error {
	return s.preflightErr
}

// stubSource lists canned refs.
type stubSource struct {
	refs []driven.StatementRef
	err  error
}

func (s *stubSource) Type() string { return "stub" }

func (s *stubSource) List(context.Context) ([]driven.StatementRef, error) {
	return s.refs, s.err
}

func (s *stubSource) Download(context.Context, driven.StatementRef) (*domain.RawDocument, error) {
	return nil, domain.ErrNotFound
}

func (s *stubSource) Close() error { return nil }

// stubDocStore answers name lookups from a set.
type stubDocStore struct {
	names map[string]bool
	docs  []domain.Document
}

func (s *stubDocStore) SaveDocument(context.Context, *domain.Document) error { return nil }
func (s *stubDocStore) SavePages(context.Context, []domain.Page) error { return nil }
func (s *stubDocStore) SaveChunks(context.Context, []domain.Chunk) error { return nil }

func (s *stubDocStore) GetDocument(context.Context, string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (s *stubDocStore) GetDocumentByName(_ context.Context, name string) (*domain.Document, error) {
	if s.names[name] {
		return &domain.Document{Name: name}, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubDocStore) GetPages(context.Context, string) ([]domain.Page, error) { return nil, nil }
func (s *stubDocStore) GetChunks(context.Context, string) ([]domain.Chunk, error) { return nil, nil }

func (s *stubDocStore) ListDocuments(context.Context) ([]domain.Document, error) {
	return s.docs, nil
}

func (s *stubDocStore) DeleteDocument(context.Context, string) error { return nil }

// stubIndex reports a fixed count.
type stubIndex struct {
	count   int
	pingErr error
}

func (s *stubIndex) EnsureCollection(context.Context, int) error { return nil }
func (s *stubIndex) Upsert(context.Context, []domain.Chunk) error {
	return nil
}

func (s *stubIndex) Search(context.Context, []float32, int) ([]domain.RetrievedChunk, error) {
	return nil, nil
}

func (s *stubIndex) Count(context.Context) (int, error) { return s.count, nil }
func (s *stubIndex) Ping(context.Context) error { return s.pingErr }
func (s *stubIndex) Close() error { return nil }

// stubEmbedder reports model health for the status command.
type stubEmbedder struct {
	model   string
	pingErr error
}

func (s *stubEmbedder) Embed(context.Context, string) ([]float32, error) { return nil, nil }

func (s *stubEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, nil
}

func (s *stubEmbedder) Dimensions() int { return 3 }
func (s *stubEmbedder) ModelName() string { return s.model }
func (s *stubEmbedder) Ping(context.Context) error { return s.pingErr }
func (s *stubEmbedder) Close() error { return nil }

// stubLLM reports model health for the status command.
type stubLLM struct {
	model   string
	pingErr error
}

func (s *stubLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	return "", nil
}

func (s *stubLLM) Stream(context.Context, string, driven.GenerateOptions) (<-chan string, <-chan error) {
	tokens := make(chan string)
	errs := make(chan error)
	close(tokens)
	close(errs)
	return tokens, errs
}

func (s *stubLLM) ModelName() string { return s.model }
func (s *stubLLM) Ping(context.Context) error { return s.pingErr }
func (s *stubLLM) Close() error { return nil }
