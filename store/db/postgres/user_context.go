package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/melodic-ai/melodic/store"
)

func (d *DB) GetUserContext(ctx context.Context, find *store.FindUserContext) (*store.UserContext, error) {
	userContext := &store.UserContext{}
	var contextJSON string
	err := d.db.QueryRowContext(ctx,
		`SELECT id, session_id, context, last_updated_ts FROM user_context WHERE session_id = `+placeholder(1),
		find.SessionID,
	).Scan(&userContext.ID, &userContext.SessionID, &contextJSON, &userContext.LastUpdatedTs)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user_context: %w", err)
	}

	if err := json.Unmarshal([]byte(contextJSON), &userContext.Context); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user_context payload: %w", err)
	}

	return userContext, nil
}

func (d *DB) UpsertUserContext(ctx context.Context, upsert *store.UpsertUserContext) (*store.UserContext, error) {
	contextJSON, err := json.Marshal(upsert.Context)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user_context payload: %w", err)
	}

	// Single-statement upsert keyed by session_id. Two concurrent requests
	// for a fresh session cannot create duplicate rows; last write wins.
	userContext := &store.UserContext{
		SessionID:     upsert.SessionID,
		Context:       upsert.Context,
		LastUpdatedTs: upsert.LastUpdatedTs,
	}
	stmt := `INSERT INTO user_context (session_id, context, last_updated_ts)
		VALUES (` + placeholders(3) + `)
		ON CONFLICT (session_id) DO UPDATE SET
			context = EXCLUDED.context,
			last_updated_ts = EXCLUDED.last_updated_ts
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, upsert.SessionID, string(contextJSON), upsert.LastUpdatedTs).Scan(&userContext.ID); err != nil {
		return nil, fmt.Errorf("failed to upsert user_context: %w", err)
	}

	return userContext, nil
}
