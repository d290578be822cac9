package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Embedding is deterministic for a fixed model version: the same text
// maps to the same vector. Records from different model versions must
// not be mixed in one index collection; Dimensions and ModelName are
// used to enforce that at collection setup.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// Blank text yields a zero vector of the model dimension rather
	// than an error, so one bad chunk cannot abort a batch.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates one embedding per text, same order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 384, 768).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight call.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
