package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/melodic-ai/melodic/server/internal/errors"
)

const (
	openRouterReferer = "https://melodic.app"
	openRouterTitle   = "Melodic AI Assistant"

	defaultHTTPTimeout = 60 * time.Second
)

// OpenRouterProvider calls the OpenRouter gateway, which speaks the
// OpenAI-compatible wire format and requires attribution headers.
type OpenRouterProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewOpenRouterProvider creates a provider for the OpenRouter gateway.
func NewOpenRouterProvider(apiKey, baseURL string) *OpenRouterProvider {
	return &OpenRouterProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
	}
}

func (*OpenRouterProvider) Name() string {
	return "openrouter"
}

type openRouterRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

func (p *OpenRouterProvider) Complete(ctx context.Context, request *CompletionRequest) (*Completion, error) {
	if p.apiKey == "" {
		return nil, apperrors.NotConfigured("OpenRouter API key is not configured, set MELODIC_OPENROUTER_API_KEY")
	}

	body, err := json.Marshal(openRouterRequest{
		Model:       request.Model,
		Messages:    request.Messages,
		Temperature: request.Temperature,
		MaxTokens:   request.MaxTokens,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUpstreamFailed, "failed to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUpstreamFailed, "failed to create request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("HTTP-Referer", openRouterReferer)
	httpReq.Header.Set("X-Title", openRouterTitle)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.ContextCanceled(ctx.Err())
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUpstreamFailed, "OpenRouter request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUpstreamFailed, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Upstream(resp.StatusCode, string(respBody))
	}

	completion := &Completion{}
	if err := json.Unmarshal(respBody, completion); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUpstreamFailed, "failed to unmarshal response")
	}
	return completion, nil
}
