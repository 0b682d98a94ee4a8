package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/melodic-ai/melodic/server/ai"
	apperrors "github.com/melodic-ai/melodic/server/internal/errors"
)

func TestSearchRequiresMessage(t *testing.T) {
	service := NewSearchService(&fakeProvider{name: "perplexity", reply: "x"}, "sonar")

	_, err := service.Search(context.Background(), &SearchRequest{})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument))
}

func TestSearchUsesSearchTuning(t *testing.T) {
	provider := &fakeProvider{name: "perplexity", reply: "answer"}
	service := NewSearchService(provider, "llama-3.1-sonar-small-128k-online")

	result, err := service.Search(context.Background(), &SearchRequest{Message: "latest jazz news"})
	require.NoError(t, err)
	require.Equal(t, "answer", result.Content)

	request := provider.requests[0]
	require.Equal(t, "llama-3.1-sonar-small-128k-online", request.Model)
	require.InDelta(t, 0.2, float64(request.Temperature), 0.0001)
	require.Equal(t, maxTokensDirect, request.MaxTokens)
	require.Equal(t, "system", request.Messages[0].Role)
	require.Equal(t, DefaultSearchSystemPrompt, request.Messages[0].Content)
}

func TestSearchGatewayTokenBudget(t *testing.T) {
	provider := &fakeProvider{name: "openrouter", reply: "answer"}
	service := NewSearchService(provider, "perplexity/sonar")

	_, err := service.Search(context.Background(), &SearchRequest{Message: "q"})
	require.NoError(t, err)
	require.Equal(t, maxTokensGateway, provider.requests[0].MaxTokens)
}

// citationProvider returns a completion with explicit citations.
type citationProvider struct {
	fakeProvider
	citations []string
}

func (p *citationProvider) Complete(ctx context.Context, request *ai.CompletionRequest) (*ai.Completion, error) {
	completion, err := p.fakeProvider.Complete(ctx, request)
	if err != nil {
		return nil, err
	}
	completion.Citations = p.citations
	return completion, nil
}

func TestSearchPrefersProviderCitations(t *testing.T) {
	provider := &citationProvider{
		fakeProvider: fakeProvider{name: "perplexity", reply: "see [1] https://inline.example.com"},
		citations:    []string{"https://provider.example.com"},
	}
	service := NewSearchService(provider, "sonar")

	result, err := service.Search(context.Background(), &SearchRequest{Message: "q"})
	require.NoError(t, err)
	require.Equal(t, []string{"https://provider.example.com"}, result.Citations)
}

func TestExtractCitations(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{
			name:     "numbered links",
			content:  "Sources:\n[1] https://example.com/a\n[2] https://example.com/b",
			expected: []string{"https://example.com/a", "https://example.com/b"},
		},
		{
			name:     "bare url fallback",
			content:  "See https://example.com/article for details.",
			expected: []string{"https://example.com/article"},
		},
		{
			name:     "no urls",
			content:  "No sources to cite here.",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, extractCitations(tt.content))
		})
	}
}
