package vector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultOllamaBaseURL is the address of a locally running Ollama server.
	DefaultOllamaBaseURL = "http://127.0.0.1:11434"

	// DefaultOllamaEmbedModel is the embedding model the original demo ran.
	DefaultOllamaEmbedModel = "nomic-embed-text"
)

// OllamaEmbedder implements the Embedder interface against an Ollama server.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// OllamaEmbedderConfig configures an OllamaEmbedder.
type OllamaEmbedderConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewOllamaEmbedder creates a new OllamaEmbedder instance.
func NewOllamaEmbedder(config OllamaEmbedderConfig) *OllamaEmbedder {
	if config.BaseURL == "" {
		config.BaseURL = DefaultOllamaBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultOllamaEmbedModel
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &OllamaEmbedder{
		baseURL: config.BaseURL,
		model:   config.Model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Initialize sets up the embedder with any required configuration.
func (e *OllamaEmbedder) Initialize() error {
	if e.baseURL == "" || e.model == "" {
		return fmt.Errorf("ollama embedder requires a base URL and a model")
	}
	return nil
}

// ollamaEmbedRequest is the request body for the Ollama embed endpoint.
type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// ollamaEmbedResponse covers both the modern /api/embed response and the
// legacy /api/embeddings single-vector shape.
type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings,omitempty"`
	Embedding  []float32   `json:"embedding,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// CreateEmbedding converts text into a vector representation by calling the
// Ollama embed API.
func (e *OllamaEmbedder) CreateEmbedding(text string) ([]float32, error) {
	reqBody := ollamaEmbedRequest{
		Model: e.model,
		Input: text,
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling embed request: %v", err)
	}

	resp, err := e.httpClient.Post(e.baseURL+"/api/embed", "application/json", bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("error sending request to Ollama embed API: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading embed response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama embed API returned %s: %s", resp.Status, respBody)
	}

	var embedResponse ollamaEmbedResponse
	if err := json.Unmarshal(respBody, &embedResponse); err != nil {
		return nil, fmt.Errorf("error unmarshaling embed response: %v", err)
	}

	if embedResponse.Error != "" {
		return nil, fmt.Errorf("ollama embed API error: %s", embedResponse.Error)
	}

	if len(embedResponse.Embeddings) > 0 && len(embedResponse.Embeddings[0]) > 0 {
		return embedResponse.Embeddings[0], nil
	}
	if len(embedResponse.Embedding) > 0 {
		return embedResponse.Embedding, nil
	}

	return nil, fmt.Errorf("empty embedding returned by Ollama embed API")
}
