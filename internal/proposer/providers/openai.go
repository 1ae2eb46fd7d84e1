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
	defaultOpenAIBaseURL = "https://api.openai.com"
	defaultOpenAIModel   = "gpt-4o-mini"
)

// OpenAIProvider implements the ChatProvider interface for OpenAI's models
type OpenAIProvider struct {
	Config
	httpClient *http.Client
}

// OpenAIMessage represents a message in OpenAI's chat format
type OpenAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIRequest represents a request to OpenAI's API
type OpenAIRequest struct {
	Model     string          `json:"model"`
	Messages  []OpenAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens"`
}

// OpenAIResponse represents a response from OpenAI's API
type OpenAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAIProvider creates a new instance of the OpenAI provider
func NewOpenAIProvider(config Config) *OpenAIProvider {
	if config.BaseURL == "" {
		config.BaseURL = defaultOpenAIBaseURL
	}
	if config.ModelID == "" {
		config.ModelID = defaultOpenAIModel
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &OpenAIProvider{
		Config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

// Complete implements the ChatProvider interface for OpenAI
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (Completion, error) {
	if p.APIKey == "" {
		return Completion{}, fmt.Errorf("OpenAI API key not provided")
	}

	reqBody := OpenAIRequest{
		Model: p.ModelID,
		Messages: []OpenAIMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens: 256,
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return Completion{}, fmt.Errorf("error marshaling request: %v", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		strings.TrimSuffix(p.BaseURL, "/")+"/v1/chat/completions",
		strings.NewReader(string(reqJSON)),
	)
	if err != nil {
		return Completion{}, fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.APIKey))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Completion{}, fmt.Errorf("error sending request to OpenAI API: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Completion{}, fmt.Errorf("error reading response body: %v", err)
	}

	var chatResponse OpenAIResponse
	if err := json.Unmarshal(respBody, &chatResponse); err != nil {
		return Completion{}, fmt.Errorf("error unmarshaling response: %v", err)
	}

	if chatResponse.Error != nil {
		return Completion{}, fmt.Errorf("OpenAI API error: %s: %s",
			chatResponse.Error.Type, chatResponse.Error.Message)
	}

	if len(chatResponse.Choices) == 0 || chatResponse.Choices[0].Message.Content == "" {
		return Completion{}, fmt.Errorf("empty response from OpenAI API")
	}

	return Completion{
		Text:             chatResponse.Choices[0].Message.Content,
		PromptTokens:     chatResponse.Usage.PromptTokens,
		CompletionTokens: chatResponse.Usage.CompletionTokens,
	}, nil
}
