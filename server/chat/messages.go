package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"

	apperrors "github.com/melodic-ai/melodic/server/internal/errors"
	"github.com/melodic-ai/melodic/store"
)

// DefaultHistoryLimit is the number of messages returned when the caller
// does not specify one.
const DefaultHistoryLimit = 50

// MessageStore is the interface needed for message persistence.
type MessageStore interface {
	CreateChatMessage(ctx context.Context, create *store.ChatMessage) (*store.ChatMessage, error)
	ListChatMessages(ctx context.Context, find *store.FindChatMessage) ([]*store.ChatMessage, error)
	DeleteChatMessages(ctx context.Context, delete *store.DeleteChatMessage) error
}

// MessageService persists and retrieves chat turns per session.
type MessageService struct {
	store MessageStore
}

// NewMessageService creates a new message service.
func NewMessageService(store MessageStore) *MessageService {
	return &MessageService{store: store}
}

// GetMessages returns the most recent limit messages for the session,
// oldest first. Reads are fail-open: on a storage error the returned slice
// is empty and usable, and the error is a diagnostic only — a persistence
// outage must not block chat.
func (s *MessageService) GetMessages(ctx context.Context, sessionID string, limit int) ([]*store.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	// The store query keeps the newest rows; flip to chronological order.
	messages, err := s.store.ListChatMessages(ctx, &store.FindChatMessage{
		SessionID: &sessionID,
		Limit:     &limit,
	})
	if err != nil {
		slog.Error("failed to get messages",
			"session_id", sessionID,
			"error", err,
		)
		return []*store.ChatMessage{}, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// CreateMessage appends one chat turn. Unlike reads, a failed write is
// surfaced to the caller: a turn that silently fails to persist would lose
// history without anyone noticing.
func (s *MessageService) CreateMessage(ctx context.Context, create *store.ChatMessage) (*store.ChatMessage, error) {
	if create.SessionID == "" {
		return nil, apperrors.InvalidArgument("sessionId is required")
	}
	if !create.Role.Valid() {
		return nil, apperrors.InvalidArgument("role must be 'user' or 'assistant'")
	}
	if create.Content == "" {
		return nil, apperrors.InvalidArgument("content is required")
	}

	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}

	message, err := s.store.CreateChatMessage(ctx, create)
	if err != nil {
		return nil, apperrors.Storage("failed to create message", err)
	}
	return message, nil
}

// DeleteAllMessages removes every message for the session. Deleting an
// empty or unknown session succeeds silently.
func (s *MessageService) DeleteAllMessages(ctx context.Context, sessionID string) error {
	if err := s.store.DeleteChatMessages(ctx, &store.DeleteChatMessage{SessionID: sessionID}); err != nil {
		return apperrors.Storage("failed to delete messages", err)
	}
	return nil
}
