package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations may include:
//   - Gemini (text-embedding-004, 768 dimensions)
//   - Ollama (nomic-embed-text, 768 dimensions)
//   - Local models via inference servers
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// Equivalent to EmbedBatch with a single element.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. The result
	// matches the input 1:1 in order and length, and every vector has
	// exactly Dimensions elements. Large inputs may be split into
	// provider batches internally; batch boundaries never change
	// output order or count.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 768).
	// This must match the document store's vector column.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup to fail before ingestion begins.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
