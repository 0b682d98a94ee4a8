package store

// UserContext holds the per-session fact map extracted from user messages.
// At most one row exists per session id; the unique constraint plus the
// atomic upsert in the drivers enforce this under concurrent requests.
type UserContext struct {
	ID            int32
	SessionID     string
	Context       map[string]string
	LastUpdatedTs int64
}

type FindUserContext struct {
	SessionID string
}

type UpsertUserContext struct {
	SessionID     string
	Context       map[string]string
	LastUpdatedTs int64
}
