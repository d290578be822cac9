package driving

import (
	"context"

	"github.com/finsight-labs/finsight/internal/core/domain"
)

// AskOptions configures a single question.
type AskOptions struct {
	// TopK is how many chunks to retrieve (default 3).
	TopK int
}

// Answerer answers questions over the ingested statements.
type Answerer interface {
	// Context retrieves the top-k chunks for a question and assembles
	// the bounded context, without calling the LLM.
	Context(ctx context.Context, question string, opts AskOptions) ([]domain.RetrievedChunk, string, error)

	// Ask answers a question in one shot.
	Ask(ctx context.Context, question string, opts AskOptions) (*domain.Answer, error)

	// AskStream answers a question as a token stream. Channel semantics
	// match driven.LLMService.Stream; Sources are resolved before the
	// first token is produced.
	AskStream(ctx context.Context, question string, opts AskOptions) (*StreamingAnswer, error)

	// Preflight checks that the index and the LLM are reachable,
	// returning the first failure.
	Preflight(ctx context.Context) error
}

// StreamingAnswer carries an in-flight answer.
type StreamingAnswer struct {
	// Sources lists the retrieved context, fixed before streaming.
	Sources []domain.RetrievedChunk

	// Tokens delivers the answer in order; closed when done.
	Tokens <-chan string

	// Errs delivers at most one terminal error, then closes.
	Errs <-chan error
}
