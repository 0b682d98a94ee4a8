package chat

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"github.com/melodic-ai/melodic/server/ai"
	apperrors "github.com/melodic-ai/melodic/server/internal/errors"
	"github.com/melodic-ai/melodic/server/internal/observability"
)

const searchTemperature = 0.2

// SearchRequest describes one web-search-augmented completion.
type SearchRequest struct {
	Message      string
	SystemPrompt string
}

// SearchResult is the search response shape: the answer text plus any
// source URLs the provider surfaced or that were found inline.
type SearchResult struct {
	Content   string   `json:"content"`
	Citations []string `json:"citations"`
	Model     string   `json:"model"`
	Usage     ai.Usage `json:"usage"`
}

// SearchService runs single-shot search completions against a
// search-capable provider. Search turns carry no session memory.
type SearchService struct {
	provider ai.Provider
	model    string
}

// NewSearchService creates a new search service.
func NewSearchService(provider ai.Provider, model string) *SearchService {
	return &SearchService{provider: provider, model: model}
}

// Search performs one search completion.
func (s *SearchService) Search(ctx context.Context, request *SearchRequest) (*SearchResult, error) {
	if request.Message == "" {
		return nil, apperrors.InvalidArgument("message is required")
	}

	systemPrompt := request.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSearchSystemPrompt
	}

	reqCtx := observability.NewRequestContext(slog.Default(), s.provider.Name(), "")
	callStart := time.Now()
	completion, err := s.provider.Complete(ctx, &ai.CompletionRequest{
		Model: s.model,
		Messages: []ai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: request.Message},
		},
		Temperature: searchTemperature,
		MaxTokens:   s.maxTokens(),
	})
	if err != nil {
		observability.GlobalMetrics().RecordFailure(s.provider.Name(), time.Since(callStart))
		reqCtx.Error("search completion failed", err,
			slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
		)
		return nil, err
	}
	observability.GlobalMetrics().RecordCall(s.provider.Name(), time.Since(callStart))

	content := completion.Content()
	citations := completion.Citations
	if len(citations) == 0 {
		citations = extractCitations(content)
	}

	reqCtx.Info("search completed",
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
		slog.Int("citations", len(citations)),
	)
	return &SearchResult{
		Content:   content,
		Citations: citations,
		Model:     completion.Model,
		Usage:     completion.Usage,
	}, nil
}

func (s *SearchService) maxTokens() int {
	if s.provider.Name() == "openrouter" {
		return maxTokensGateway
	}
	return maxTokensDirect
}

var (
	numberedCitationRegexp = regexp.MustCompile(`\[(\d+)\]\s*(https?://[^\s,]+)`)
	bareURLRegexp          = regexp.MustCompile(`https?://[^\s,)]+`)
)

// extractCitations pulls source URLs out of the response text. Numbered
// markdown links win; bare URLs are the fallback.
func extractCitations(content string) []string {
	citations := []string{}
	for _, match := range numberedCitationRegexp.FindAllStringSubmatch(content, -1) {
		citations = append(citations, match[2])
	}
	if len(citations) == 0 {
		citations = append(citations, bareURLRegexp.FindAllString(content, -1)...)
	}
	return citations
}
