package llm

import (
	"fmt"
	"os"
)

// NewProvider creates a new LLM provider based on the given provider type and model.
// Supported provider types: "openai", "echo". The OpenAI key is read from
// OPENAI_API_KEY.
func NewProvider(providerType string, model string) (Provider, error) {
	return NewProviderWithKey(providerType, model, os.Getenv("OPENAI_API_KEY"))
}

// NewProviderWithKey is NewProvider with an explicit API key.
func NewProviderWithKey(providerType, model, apiKey string) (Provider, error) {
	switch providerType {
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey, model), nil

	case "echo":
		return NewEchoProvider(), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
