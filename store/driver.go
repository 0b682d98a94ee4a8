package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// ChatMessage model related methods.
	CreateChatMessage(ctx context.Context, create *ChatMessage) (*ChatMessage, error)
	ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error)
	DeleteChatMessages(ctx context.Context, delete *DeleteChatMessage) error

	// UserContext model related methods.
	// GetUserContext returns nil when no row exists for the session.
	GetUserContext(ctx context.Context, find *FindUserContext) (*UserContext, error)
	// UpsertUserContext performs an atomic insert-on-conflict-update keyed
	// by session id. Last write wins.
	UpsertUserContext(ctx context.Context, upsert *UpsertUserContext) (*UserContext, error)

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)
}
