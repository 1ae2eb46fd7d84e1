package vector

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// MockEmbedder is a deterministic implementation of the Embedder interface.
// The same text always produces the same unit-length vector, which makes it
// usable both in tests and as a no-network default provider.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder creates a new MockEmbedder with the specified dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &MockEmbedder{
		dimensions: dimensions,
	}
}

// Initialize sets up the embedder with any required configuration.
func (e *MockEmbedder) Initialize() error {
	return nil // No initialization needed for the mock embedder
}

// CreateEmbedding generates a deterministic embedding for the given text.
// Each dimension is seeded from a running SHA-256 digest of the text, then
// the vector is normalized to unit length.
func (e *MockEmbedder) CreateEmbedding(text string) ([]float32, error) {
	embedding := make([]float32, e.dimensions)

	digest := sha256.Sum256([]byte(text))
	for i := 0; i < e.dimensions; i++ {
		if i > 0 && i%8 == 0 {
			// Re-hash to extend the seed material past one digest.
			digest = sha256.Sum256(digest[:])
		}
		seed := binary.LittleEndian.Uint32(digest[(i%8)*4:])

		// Map the seed into [-1, 1).
		embedding[i] = float32(seed%2000)/1000.0 - 1.0
	}

	normalizeEmbedding(embedding)

	return embedding, nil
}

// normalizeEmbedding normalizes the embedding to have unit length.
func normalizeEmbedding(embedding []float32) {
	var sumSquares float32
	for _, val := range embedding {
		sumSquares += val * val
	}

	magnitude := float32(math.Sqrt(float64(sumSquares)))
	if magnitude == 0 {
		return
	}

	for i := range embedding {
		embedding[i] /= magnitude
	}
}
