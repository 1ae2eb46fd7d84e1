// Package vector provides the embedding-oracle clients and vector math
// used by the reverse-vector search loop.
package vector

const (
	// DefaultEmbeddingDimensions defines the standard size of embedding vectors.
	// 768 is the output size of nomic-embed-text, the model the demo targets.
	DefaultEmbeddingDimensions = 768
)

// Embedder defines the interface for creating vector embeddings from text.
// It is the embedding oracle of the search loop: latency, availability and
// the exact model behind it are opaque to callers.
type Embedder interface {
	// CreateEmbedding converts text into a vector representation.
	CreateEmbedding(text string) ([]float32, error)

	// Initialize sets up the embedder with any required configuration.
	Initialize() error
}
