package chat

import (
	"context"
	"log/slog"
	"maps"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/melodic-ai/melodic/server/ai"
	apperrors "github.com/melodic-ai/melodic/server/internal/errors"
	"github.com/melodic-ai/melodic/server/internal/observability"
	"github.com/melodic-ai/melodic/store"
)

const (
	// MaxConversationHistory bounds the prior turns sent upstream.
	MaxConversationHistory = 50

	// DefaultChatModel matches the current OpenAI flagship chat model.
	DefaultChatModel = "gpt-4o"

	chatTemperature = 0.7

	// Direct-API responses stay short; gateway models get more room.
	maxTokensDirect  = 500
	maxTokensGateway = 1000
)

// HistoryEntry is one prior turn supplied by the client.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest describes one chat turn to orchestrate.
type ChatRequest struct {
	Message             string
	Model               string
	SessionID           string
	SystemPrompt        string
	ConversationHistory []HistoryEntry
	UserID              *int32
}

// ChatResult carries the normalized completion plus the resolved session id
// so the client can remember it for subsequent calls. SystemPrompt is the
// exact composed prompt that was sent upstream.
type ChatResult struct {
	Completion   *ai.Completion
	SessionID    string
	SystemPrompt string
}

// Service orchestrates one chat turn: session resolution, context memory,
// prompt composition, the provider call, and best-effort persistence.
// It is stateless across requests beyond what the store persists.
type Service struct {
	provider       ai.Provider
	contextManager *ContextManager
	messages       *MessageService
}

// NewService creates a new chat orchestrator.
func NewService(provider ai.Provider, contextManager *ContextManager, messages *MessageService) *Service {
	return &Service{
		provider:       provider,
		contextManager: contextManager,
		messages:       messages,
	}
}

// Chat runs one full turn. Provider and configuration errors fail the
// request; context and message persistence failures never do.
func (s *Service) Chat(ctx context.Context, request *ChatRequest) (*ChatResult, error) {
	if request.Message == "" {
		return nil, apperrors.InvalidArgument("message is required")
	}

	sessionID := request.SessionID
	if sessionID == "" {
		sessionID = shortuuid.New()
	}

	reqCtx := observability.NewRequestContext(slog.Default(), s.provider.Name(), sessionID)
	reqCtx.Debug("chat turn started",
		slog.Int(observability.LogFieldMessageLen, len(request.Message)),
	)

	// Context memory is fail-open end to end: a broken store degrades to an
	// empty fact map and the turn proceeds.
	userContext, ctxErr := s.contextManager.GetContext(ctx, sessionID)
	if ctxErr != nil {
		reqCtx.Warn("context memory degraded, continuing without it")
	}

	updatedContext := ExtractUserInfo(request.Message, userContext)
	if !maps.Equal(updatedContext, userContext) {
		if err := s.contextManager.UpdateContext(ctx, sessionID, updatedContext); err != nil {
			reqCtx.Warn("failed to persist extracted context")
		}
	}

	base := request.SystemPrompt
	if base == "" {
		base = DefaultSystemPrompt
	}
	systemPrompt := BuildSystemPrompt(base, updatedContext)

	model := request.Model
	if model == "" {
		model = DefaultChatModel
	}

	callStart := time.Now()
	completion, err := s.provider.Complete(ctx, &ai.CompletionRequest{
		Model:       model,
		Messages:    s.assembleMessages(systemPrompt, request),
		Temperature: chatTemperature,
		MaxTokens:   s.maxTokens(),
	})
	if err != nil {
		observability.GlobalMetrics().RecordFailure(s.provider.Name(), time.Since(callStart))
		reqCtx.Error("chat completion failed", err,
			slog.String(observability.LogFieldErrorCode, string(apperrors.GetCodeFromError(err, apperrors.ErrCodeUpstreamFailed))),
			slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
		)
		return nil, err
	}
	observability.GlobalMetrics().RecordCall(s.provider.Name(), time.Since(callStart))

	s.persistTurn(ctx, reqCtx, sessionID, request, completion)

	reqCtx.Info("chat turn completed",
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
	)
	return &ChatResult{
		Completion:   completion,
		SessionID:    sessionID,
		SystemPrompt: systemPrompt,
	}, nil
}

// assembleMessages builds the outgoing payload: system prompt at the head,
// up to the last MaxConversationHistory prior turns, and the new user
// message at the tail.
func (s *Service) assembleMessages(systemPrompt string, request *ChatRequest) []ai.Message {
	history := request.ConversationHistory
	if len(history) > MaxConversationHistory {
		history = history[len(history)-MaxConversationHistory:]
	}

	messages := make([]ai.Message, 0, len(history)+2)
	messages = append(messages, ai.Message{Role: "system", Content: systemPrompt})
	for _, entry := range history {
		messages = append(messages, ai.Message{Role: entry.Role, Content: entry.Content})
	}
	messages = append(messages, ai.Message{Role: "user", Content: request.Message})
	return messages
}

func (s *Service) maxTokens() int {
	if s.provider.Name() == "openai" {
		return maxTokensDirect
	}
	return maxTokensGateway
}

// persistTurn saves the user message and the assistant reply. Persistence
// after a successful completion is best-effort: failures are logged and the
// response is still returned, trading durability for availability.
func (s *Service) persistTurn(ctx context.Context, reqCtx *observability.RequestContext, sessionID string, request *ChatRequest, completion *ai.Completion) {
	now := time.Now().Unix()
	if _, err := s.messages.CreateMessage(ctx, &store.ChatMessage{
		SessionID: sessionID,
		UserID:    request.UserID,
		Role:      store.RoleUser,
		Content:   request.Message,
		CreatedTs: now,
	}); err != nil {
		reqCtx.Error("failed to save user message", err)
	}

	reply := completion.Content()
	if reply == "" {
		return
	}
	if _, err := s.messages.CreateMessage(ctx, &store.ChatMessage{
		SessionID: sessionID,
		UserID:    request.UserID,
		Role:      store.RoleAssistant,
		Content:   reply,
		CreatedTs: now,
	}); err != nil {
		reqCtx.Error("failed to save assistant message", err)
	}
}
