package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/melodic-ai/melodic/store"
)

// ContextStore is the interface needed for context persistence.
type ContextStore interface {
	GetUserContext(ctx context.Context, find *store.FindUserContext) (*store.UserContext, error)
	UpsertUserContext(ctx context.Context, upsert *store.UpsertUserContext) (*store.UserContext, error)
}

// ContextManager loads and persists the per-session fact map.
//
// Both operations are fail-open: a storage failure degrades context memory
// but must never block chat. Callers always receive a usable map; the
// returned error is a diagnostic for logging and tests, not a failure.
type ContextManager struct {
	store ContextStore
}

// NewContextManager creates a new context manager.
func NewContextManager(store ContextStore) *ContextManager {
	return &ContextManager{store: store}
}

// GetContext returns the persisted context for the session. When no row
// exists yet, an empty one is created and persisted so the caller never
// needs a separate ensure-exists step.
func (m *ContextManager) GetContext(ctx context.Context, sessionID string) (map[string]string, error) {
	record, err := m.store.GetUserContext(ctx, &store.FindUserContext{SessionID: sessionID})
	if err != nil {
		slog.Error("failed to get user context",
			"session_id", sessionID,
			"error", err,
		)
		return map[string]string{}, err
	}
	if record != nil {
		if record.Context == nil {
			return map[string]string{}, nil
		}
		return record.Context, nil
	}

	// No context yet: create an empty one.
	emptyContext := map[string]string{}
	if err := m.UpdateContext(ctx, sessionID, emptyContext); err != nil {
		return emptyContext, err
	}
	return emptyContext, nil
}

// UpdateContext replaces the stored context map for the session. The write
// is a single atomic upsert; last write wins under concurrent requests.
func (m *ContextManager) UpdateContext(ctx context.Context, sessionID string, contextData map[string]string) error {
	_, err := m.store.UpsertUserContext(ctx, &store.UpsertUserContext{
		SessionID:     sessionID,
		Context:       contextData,
		LastUpdatedTs: time.Now().Unix(),
	})
	if err != nil {
		slog.Error("failed to update user context",
			"session_id", sessionID,
			"error", err,
		)
	}
	return err
}
