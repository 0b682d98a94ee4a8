package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/melodic-ai/melodic/server/internal/errors"
)

// PerplexityProvider calls the Perplexity online-search completion API.
// Requests are tuned for web search: low temperature, recency filtering,
// and a frequency penalty that discourages repeated citations.
type PerplexityProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewPerplexityProvider creates a provider for the Perplexity API.
func NewPerplexityProvider(apiKey, baseURL string) *PerplexityProvider {
	return &PerplexityProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
	}
}

func (*PerplexityProvider) Name() string {
	return "perplexity"
}

type perplexityRequest struct {
	Model                  string    `json:"model"`
	Messages               []Message `json:"messages"`
	Temperature            float32   `json:"temperature"`
	TopP                   float32   `json:"top_p"`
	MaxTokens              int       `json:"max_tokens"`
	SearchDomainFilter     []string  `json:"search_domain_filter"`
	ReturnImages           bool      `json:"return_images"`
	ReturnRelatedQuestions bool      `json:"return_related_questions"`
	SearchRecencyFilter    string    `json:"search_recency_filter"`
	Stream                 bool      `json:"stream"`
	PresencePenalty        float32   `json:"presence_penalty"`
	FrequencyPenalty       float32   `json:"frequency_penalty"`
}

func (p *PerplexityProvider) Complete(ctx context.Context, request *CompletionRequest) (*Completion, error) {
	if p.apiKey == "" {
		return nil, apperrors.NotConfigured("Perplexity API key is not configured, set MELODIC_PERPLEXITY_API_KEY")
	}

	body, err := json.Marshal(perplexityRequest{
		Model:                  request.Model,
		Messages:               request.Messages,
		Temperature:            request.Temperature,
		TopP:                   0.9,
		MaxTokens:              request.MaxTokens,
		SearchDomainFilter:     []string{},
		ReturnImages:           false,
		ReturnRelatedQuestions: false,
		SearchRecencyFilter:    "month",
		Stream:                 false,
		PresencePenalty:        0,
		FrequencyPenalty:       1,
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

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.ContextCanceled(ctx.Err())
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUpstreamFailed, "Perplexity request failed")
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
