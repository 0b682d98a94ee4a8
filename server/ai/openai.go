package ai

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/melodic-ai/melodic/server/internal/errors"
)

// OpenAIProvider calls the OpenAI chat completion API directly.
type OpenAIProvider struct {
	client *openai.Client
	apiKey string
}

// NewOpenAIProvider creates a provider for the direct OpenAI API.
// An empty API key is allowed at construction time; it is surfaced as a
// configuration error on the first call instead.
func NewOpenAIProvider(apiKey, baseURL string) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		apiKey: apiKey,
	}
}

func (*OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) Complete(ctx context.Context, request *CompletionRequest) (*Completion, error) {
	if p.apiKey == "" {
		return nil, apperrors.NotConfigured("OpenAI API key is not configured, set MELODIC_OPENAI_API_KEY")
	}

	messages := make([]openai.ChatCompletionMessage, len(request.Messages))
	for i, msg := range request.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       request.Model,
		Messages:    messages,
		Temperature: request.Temperature,
		MaxTokens:   request.MaxTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, apperrors.Upstream(apiErr.HTTPStatusCode, apiErr.Message)
		}
		if errors.Is(err, context.Canceled) {
			return nil, apperrors.ContextCanceled(err)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUpstreamFailed, "OpenAI request failed")
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.Upstream(0, "empty chat response")
	}

	completion := &Completion{
		ID:    resp.ID,
		Model: resp.Model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	for _, choice := range resp.Choices {
		completion.Choices = append(completion.Choices, Choice{
			Index: choice.Index,
			Message: Message{
				Role:    choice.Message.Role,
				Content: choice.Message.Content,
			},
		})
	}
	return completion, nil
}
