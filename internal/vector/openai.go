package vector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOpenAIEmbedURL   = "https://api.openai.com/v1/embeddings"
	defaultOpenAIEmbedModel = "text-embedding-3-small"
)

// OpenAIEmbedder implements the Embedder interface against the OpenAI
// embeddings API (or any endpoint speaking the same wire format).
type OpenAIEmbedder struct {
	apiURL     string
	apiKey     string
	model      string
	httpClient *http.Client
}

// OpenAIEmbedderConfig configures an OpenAIEmbedder.
type OpenAIEmbedderConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewOpenAIEmbedder creates a new OpenAIEmbedder instance.
func NewOpenAIEmbedder(config OpenAIEmbedderConfig) *OpenAIEmbedder {
	apiURL := defaultOpenAIEmbedURL
	if config.BaseURL != "" {
		apiURL = strings.TrimSuffix(config.BaseURL, "/") + "/v1/embeddings"
	}
	if config.Model == "" {
		config.Model = defaultOpenAIEmbedModel
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &OpenAIEmbedder{
		apiURL: apiURL,
		apiKey: config.APIKey,
		model:  config.Model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Initialize sets up the embedder with any required configuration.
func (e *OpenAIEmbedder) Initialize() error {
	if e.apiKey == "" {
		return fmt.Errorf("OpenAI API key not provided")
	}
	return nil
}

// openaiEmbedRequest is the request body for the embeddings endpoint.
type openaiEmbedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// openaiEmbedResponse is the response body from the embeddings endpoint.
type openaiEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// CreateEmbedding converts text into a vector representation by calling the
// OpenAI embeddings API.
func (e *OpenAIEmbedder) CreateEmbedding(text string) ([]float32, error) {
	reqBody := openaiEmbedRequest{
		Model: e.model,
		Input: text,
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling embed request: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, e.apiURL, strings.NewReader(string(reqJSON)))
	if err != nil {
		return nil, fmt.Errorf("error creating embed request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", e.apiKey))

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request to OpenAI embeddings API: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading embed response body: %v", err)
	}

	var embedResponse openaiEmbedResponse
	if err := json.Unmarshal(respBody, &embedResponse); err != nil {
		return nil, fmt.Errorf("error unmarshaling embed response: %v", err)
	}

	if embedResponse.Error != nil {
		return nil, fmt.Errorf("OpenAI embeddings API error: %s: %s",
			embedResponse.Error.Type, embedResponse.Error.Message)
	}

	if len(embedResponse.Data) == 0 || len(embedResponse.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI embeddings API")
	}

	return embedResponse.Data[0].Embedding, nil
}
