package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/finsight-labs/finsight/internal/core/domain"
	"github.com/finsight-labs/finsight/internal/core/ports/driven"
	"github.com/finsight-labs/finsight/internal/core/ports/driving"
	"github.com/finsight-labs/finsight/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.Answerer = (*AnswerService)(nil)

// Default retrieval and generation parameters.
const (
	DefaultTopK          = 3
	DefaultContextBudget = 8000 // characters of cleaned chunk text
	DefaultMaxTokens     = 1024
	DefaultTemperature   = 0.2
)

// promptTemplate grounds the model in the retrieved context. The first
// %s is the assembled context, the second is the question.
const promptTemplate = `You are a financial assistant who only knows information about the bank's published financial statements and cannot detail any information about other entities unless mentioned in the context provided to you. Use the following context to answer the question.
Context:
%s

Question: %s

Answer (extract the key information directly from the context):`

// Chunk cleaning: extracted statement text is full of layout noise
// that wastes prompt budget.
var (
	multiNewlineRe = regexp.MustCompile(`\n\s*\n`)
	singleCharRe   = regexp.MustCompile(`\n\s*([a-zA-Z])\s*\n`)
	multiSpaceRe   = regexp.MustCompile(`\s+`)
)

// AnswerService answers questions over the ingested statements by
// retrieving similar chunks and prompting the LLM with them.
type AnswerService struct {
	embedder      driven.EmbeddingService
	index         driven.VectorIndex
	llm           driven.LLMService
	topK          int
	contextBudget int
}

// AnswerOption configures the answer service.
type AnswerOption func(*AnswerService)

// WithTopK sets how many chunks to retrieve by default.
func WithTopK(k int) AnswerOption {
	return func(s *AnswerService) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithContextBudget caps the assembled context size in characters.
func WithContextBudget(budget int) AnswerOption {
	return func(s *AnswerService) {
		if budget > 0 {
			s.contextBudget = budget
		}
	}
}

// NewAnswerService creates a new answer service.
func NewAnswerService(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	llm driven.LLMService,
	opts ...AnswerOption,
) *AnswerService {
	s := &AnswerService{
		embedder:      embedder,
		index:         index,
		llm:           llm,
		topK:          DefaultTopK,
		contextBudget: DefaultContextBudget,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Context retrieves the top-k chunks for a question and assembles the
// bounded context without calling the LLM.
func (s *AnswerService) Context(ctx context.Context, question string, opts driving.AskOptions) ([]domain.RetrievedChunk, string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, "", fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	k := opts.TopK
	if k <= 0 {
		k = s.topK
	}

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, "", fmt.Errorf("embedding question: %w", err)
	}

	retrieved, err := s.index.Search(ctx, vector, k)
	if err != nil {
		return nil, "", fmt.Errorf("searching index: %w", err)
	}
	logger.Debug("retrieved %d chunks for question", len(retrieved))

	return retrieved, s.assembleContext(retrieved), nil
}

// assembleContext cleans each chunk and joins them, truncating the
// final chunk rather than dropping it when the budget runs out.
func (s *AnswerService) assembleContext(retrieved []domain.RetrievedChunk) string {
	var parts []string
	used := 0

	for _, r := range retrieved {
		cleaned := cleanChunkText(r.Chunk.Content)
		if cleaned == "" {
			continue
		}

		remaining := s.contextBudget - used
		if remaining <= 0 {
			break
		}
		// The budget counts runes; slicing bytes could cut a multi-byte
		// sequence in half and feed the model invalid UTF-8.
		runes := []rune(cleaned)
		if len(runes) > remaining {
			runes = runes[:remaining]
			cleaned = string(runes)
		}

		part := fmt.Sprintf("[%s, page %d]\n%s", r.Chunk.DocumentName, r.Chunk.Page, cleaned)
		parts = append(parts, part)
		used += len(runes)
	}

	return strings.Join(parts, "\n\n")
}

// cleanChunkText strips the layout noise PDF extraction leaves behind.
func cleanChunkText(text string) string {
	cleaned := multiNewlineRe.ReplaceAllString(text, "\n")
	cleaned = singleCharRe.ReplaceAllString(cleaned, " $1 ")
	cleaned = multiSpaceRe.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// Ask answers a question in one shot.
func (s *AnswerService) Ask(ctx context.Context, question string, opts driving.AskOptions) (*domain.Answer, error) {
	sources, contextText, err := s.Context(ctx, question, opts)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(promptTemplate, contextText, strings.TrimSpace(question))
	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &domain.Answer{
		Text:    strings.TrimSpace(text),
		Sources: sources,
	}, nil
}

// AskStream answers a question as a token stream. Sources are resolved
// before the first token; an unreachable index fails here, before any
// streaming begins.
func (s *AnswerService) AskStream(ctx context.Context, question string, opts driving.AskOptions) (*driving.StreamingAnswer, error) {
	sources, contextText, err := s.Context(ctx, question, opts)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(promptTemplate, contextText, strings.TrimSpace(question))
	tokens, errs := s.llm.Stream(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
	})

	return &driving.StreamingAnswer{
		Sources: sources,
		Tokens:  tokens,
		Errs:    errs,
	}, nil
}

// Preflight checks that the index and the LLM are reachable.
func (s *AnswerService) Preflight(ctx context.Context) error {
	if err := s.index.Ping(ctx); err != nil {
		return fmt.Errorf("vector index unreachable: %w", err)
	}
	if err := s.llm.Ping(ctx); err != nil {
		return fmt.Errorf("llm unreachable: %w", err)
	}
	return nil
}
