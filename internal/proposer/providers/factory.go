package providers

import (
	"fmt"
)

// NewProvider returns an initialized chat provider for the given name.
func NewProvider(name string, config Config) (ChatProvider, error) {
	switch name {
	case ProviderOllama, "":
		return NewOllamaProvider(config), nil
	case ProviderOpenAI:
		return NewOpenAIProvider(config), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
}
