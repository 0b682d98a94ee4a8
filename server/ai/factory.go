package ai

import (
	"fmt"

	"github.com/melodic-ai/melodic/internal/profile"
)

// NewChatProvider returns the provider that serves plain chat completions.
func NewChatProvider(profile *profile.Profile) (Provider, error) {
	switch profile.ChatProvider {
	case "openai":
		return NewOpenAIProvider(profile.OpenAIAPIKey, profile.OpenAIBaseURL), nil
	case "openrouter":
		return NewOpenRouterProvider(profile.OpenRouterAPIKey, profile.OpenRouterBaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", profile.ChatProvider)
	}
}

// NewSearchProvider returns the provider that serves web-search-augmented
// completions.
func NewSearchProvider(profile *profile.Profile) (Provider, error) {
	switch profile.SearchProvider {
	case "perplexity":
		return NewPerplexityProvider(profile.PerplexityAPIKey, profile.PerplexityBaseURL), nil
	case "openrouter":
		return NewOpenRouterProvider(profile.OpenRouterAPIKey, profile.OpenRouterBaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported search provider: %s", profile.SearchProvider)
	}
}
