package driven

import "context"

// LLMService produces completions from a locally hosted language model.
type LLMService interface {
	// Generate produces a complete text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Stream produces a completion as an in-order token stream.
	//
	// The tokens channel closes when generation finishes or fails; on
	// failure, tokens already delivered are preserved and exactly one
	// error is sent on the errs channel before it closes. Cancelling
	// ctx releases the underlying connection promptly on every exit
	// path, including an abandoned consumer.
	Stream(ctx context.Context, prompt string, opts GenerateOptions) (tokens <-chan string, errs <-chan error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight call.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}
