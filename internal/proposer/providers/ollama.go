package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultOllamaBaseURL = "http://127.0.0.1:11434"

	// defaultOllamaModel is the chat model the original demo ran.
	defaultOllamaModel = "llama3.2:3b"
)

// OllamaProvider implements the ChatProvider interface against an Ollama
// server's chat endpoint.
type OllamaProvider struct {
	Config
	httpClient *http.Client
}

// OllamaMessage represents a message in Ollama's chat format
type OllamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OllamaRequest represents a request to Ollama's chat API
type OllamaRequest struct {
	Model    string          `json:"model"`
	Messages []OllamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

// OllamaResponse represents a non-streaming response from Ollama's chat API
type OllamaResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	Error           string `json:"error,omitempty"`
}

// NewOllamaProvider creates a new instance of the Ollama provider
func NewOllamaProvider(config Config) *OllamaProvider {
	if config.BaseURL == "" {
		config.BaseURL = defaultOllamaBaseURL
	}
	if config.ModelID == "" {
		config.ModelID = defaultOllamaModel
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &OllamaProvider{
		Config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return ProviderOllama
}

// Complete implements the ChatProvider interface for Ollama
func (p *OllamaProvider) Complete(ctx context.Context, prompt string) (Completion, error) {
	reqBody := OllamaRequest{
		Model: p.ModelID,
		Messages: []OllamaMessage{
			{Role: "user", Content: prompt},
		},
		Stream: false,
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return Completion{}, fmt.Errorf("error marshaling request: %v", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		strings.TrimSuffix(p.BaseURL, "/")+"/api/chat",
		strings.NewReader(string(reqJSON)),
	)
	if err != nil {
		return Completion{}, fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Completion{}, fmt.Errorf("error sending request to Ollama chat API: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Completion{}, fmt.Errorf("error reading response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Completion{}, fmt.Errorf("ollama chat API returned %s: %s", resp.Status, respBody)
	}

	var chatResponse OllamaResponse
	if err := json.Unmarshal(respBody, &chatResponse); err != nil {
		return Completion{}, fmt.Errorf("error unmarshaling response: %v", err)
	}

	if chatResponse.Error != "" {
		return Completion{}, fmt.Errorf("ollama chat API error: %s", chatResponse.Error)
	}

	if chatResponse.Message.Content == "" {
		return Completion{}, fmt.Errorf("empty response from Ollama chat API")
	}

	return Completion{
		Text:             chatResponse.Message.Content,
		PromptTokens:     chatResponse.PromptEvalCount,
		CompletionTokens: chatResponse.EvalCount,
	}, nil
}
