package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/finsight-labs/finsight/internal/core/domain"
	"github.com/finsight-labs/finsight/internal/core/ports/driven"
)

// fakeSource serves statements from memory.
type fakeSource struct {
	refs        []driven.StatementRef
	listErr     error
	downloadErr map[string]error
}

func (f *fakeSource) Type() string { return "fake" }

func (f *fakeSource) List(context.Context) ([]driven.StatementRef, error) {
	return f.refs, f.listErr
}

func (f *fakeSource) Download(_ context.Context, ref driven.StatementRef) (*domain.RawDocument, error) {
	if err := f.downloadErr[ref.URL]; err != nil {
		return nil, err
	}
	return &domain.RawDocument{
		Name:      ref.Name(),
		URI:       ref.URL,
		Statement: ref.Statement,
		Content:   []byte("%PDF-1.7 " + ref.URL),
	}, nil
}

func (f *fakeSource) Close() error { return nil }

// fakeNormaliser yields one text page per document.
type fakeNormaliser struct {
	err       error
	perName   map[string]error
	pageCount int
}

func (f *fakeNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := f.perName[raw.Name]; err != nil {
		return nil, err
	}
	count := f.pageCount
	if count == 0 {
		count = 2
	}
	id := "id-" + raw.Name
	return &domain.Document{
		ID:       id,
		Name:     raw.Name,
		URI:      raw.URI,
		Language: raw.Statement.Language,
		Content:  "File: " + raw.Name + "\n\n## Page 1\n\nSome statement text.\n",
		Pages: []domain.Page{
			{DocumentID: id, Number: 1, Class: domain.PageText, Text: "Some statement text."},
			{DocumentID: id, Number: 2, Class: domain.PageImage},
		},
		Statement: raw.Statement,
		PageCount: count,
	}, nil
}

// fakePipeline cuts the content into a fixed number of chunks.
type fakePipeline struct {
	chunksPerDoc int
	err          error
}

func (f *fakePipeline) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	n := f.chunksPerDoc
	if n == 0 {
		n = 2
	}
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			ID:           fmt.Sprintf("%s-chunk-%d", doc.ID, i),
			DocumentID:   doc.ID,
			DocumentName: doc.Name,
			Language:     doc.Language,
			Content:      fmt.Sprintf("chunk %d of %s", i, doc.Name),
			Position:     i,
			Page:         1,
		}
	}
	return chunks, nil
}

// fakeEmbedder maps any text to a fixed-dimension vector.
type fakeEmbedder struct {
	dims int
	err  error
}

func (f *fakeEmbedder) dimensions() int {
	if f.dims == 0 {
		return 3
	}
	return f.dims
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vec := make([]float32, f.dimensions())
	for i := range vec {
		vec[i] = float32(len(text) % (i + 2))
	}
	return vec, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return f.dimensions() }
func (f *fakeEmbedder) ModelName() string { return "fake-embed" }
func (f *fakeEmbedder) Ping(context.Context) error { return nil }
func (f *fakeEmbedder) Close() error { return nil }

// fakeIndex records upserts in memory.
type fakeIndex struct {
	mu         sync.Mutex
	dimension  int
	upserted   []domain.Chunk
	results    []domain.RetrievedChunk
	ensureErr  error
	upsertErr  error
	searchErr  error
	pingErr    error
	searchedK  int
	lastVector []float32
}

func (f *fakeIndex) EnsureCollection(_ context.Context, dimension int) error {
	if f.ensureErr != nil {
		return f.ensureErr
	}
	f.dimension = dimension
	return nil
}

func (f *fakeIndex) Upsert(_ context.Context, chunks []domain.Chunk) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, chunks...)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.searchedK = k
	f.lastVector = vector
	if len(f.results) > k {
		return f.results[:k], nil
	}
	return f.results, nil
}

func (f *fakeIndex) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.upserted), nil
}

func (f *fakeIndex) Ping(context.Context) error { return f.pingErr }
func (f *fakeIndex) Close() error { return nil }

// fakeDocStore keeps documents in maps.
type fakeDocStore struct {
	mu      sync.Mutex
	byID    map[string]*domain.Document
	byName  map[string]*domain.Document
	pages   map[string][]domain.Page
	chunks  map[string][]domain.Chunk
	saveErr error
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{
		byID:   make(map[string]*domain.Document),
		byName: make(map[string]*domain.Document),
		pages:  make(map[string][]domain.Page),
		chunks: make(map[string][]domain.Chunk),
	}
}

func (f *fakeDocStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[doc.ID] = doc
	f.byName[doc.Name] = doc
	return nil
}

func (f *fakeDocStore) SavePages(_ context.Context, pages []domain.Page) error {
	if len(pages) == 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[pages[0].DocumentID] = pages
	return nil
}

func (f *fakeDocStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chunks[chunks[0].DocumentID] = chunks
	return nil
}

func (f *fakeDocStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (f *fakeDocStore) GetDocumentByName(_ context.Context, name string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.byName[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (f *fakeDocStore) GetPages(_ context.Context, documentID string) ([]domain.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pages[documentID], nil
}

func (f *fakeDocStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chunks[documentID], nil
}

func (f *fakeDocStore) ListDocuments(context.Context) ([]domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	docs := make([]domain.Document, 0, len(f.byID))
	for _, d := range f.byID {
		docs = append(docs, *d)
	}
	return docs, nil
}

func (f *fakeDocStore) DeleteDocument(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if doc, ok := f.byID[id]; ok {
		delete(f.byName, doc.Name)
	}
	delete(f.byID, id)
	return nil
}

// fakeLLM replays canned output.
type fakeLLM struct {
	answer     string
	tokens     []string
	streamErr  error
	genErr     error
	pingErr    error
	lastPrompt string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	f.lastPrompt = prompt
	if f.genErr != nil {
		return "", f.genErr
	}
	return f.answer, nil
}

func (f *fakeLLM) Stream(_ context.Context, prompt string, _ driven.GenerateOptions) (<-chan string, <-chan error) {
	f.lastPrompt = prompt
	tokens := make(chan string, len(f.tokens))
	errs := make(chan error, 1)
	for _, t := range f.tokens {
		tokens <- t
	}
	if f.streamErr != nil {
		errs <- f.streamErr
	}
	close(tokens)
	close(errs)
	return tokens, errs
}

func (f *fakeLLM) ModelName() string { return "fake-llm" }
func (f *fakeLLM) Ping(context.Context) error { return f.pingErr }
func (f *fakeLLM) Close() error { return nil }
