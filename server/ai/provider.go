// Package ai hides the differences between upstream completion providers
// behind one normalized request/response contract. Adapters perform a single
// synchronous HTTP round trip per call: no retries, no streaming.
package ai

import (
	"context"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// CompletionRequest is the provider-agnostic request shape.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Choice represents one completion choice.
type Choice struct {
	Index   int     `json:"index"`
	Message Message `json:"message"`
}

// Usage represents token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the normalized reply shape shared by every provider.
type Completion struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
	// Citations is populated by search-capable providers only.
	Citations []string `json:"citations,omitempty"`
}

// Content returns the first choice's message content, or "".
func (c *Completion) Content() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Message.Content
}

// Provider performs chat completions against one upstream API.
type Provider interface {
	Name() string
	Complete(ctx context.Context, request *CompletionRequest) (*Completion, error)
}
