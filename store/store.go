package store

import (
	"context"

	"github.com/melodic-ai/melodic/internal/profile"
)

// Store provides database access to all raw objects.
// Context lookups stay storage-backed on every call; there is deliberately
// no in-process cache of user contexts, which keeps multi-process
// deployments correct without an invalidation story.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) CreateChatMessage(ctx context.Context, create *ChatMessage) (*ChatMessage, error) {
	return s.driver.CreateChatMessage(ctx, create)
}

func (s *Store) ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error) {
	return s.driver.ListChatMessages(ctx, find)
}

func (s *Store) DeleteChatMessages(ctx context.Context, delete *DeleteChatMessage) error {
	return s.driver.DeleteChatMessages(ctx, delete)
}

func (s *Store) GetUserContext(ctx context.Context, find *FindUserContext) (*UserContext, error) {
	return s.driver.GetUserContext(ctx, find)
}

func (s *Store) UpsertUserContext(ctx context.Context, upsert *UpsertUserContext) (*UserContext, error) {
	return s.driver.UpsertUserContext(ctx, upsert)
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	return s.driver.CreateUser(ctx, create)
}

func (s *Store) GetUser(ctx context.Context, id int32) (*User, error) {
	users, err := s.driver.ListUsers(ctx, &FindUser{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return users[0], nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	users, err := s.driver.ListUsers(ctx, &FindUser{Username: &username})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return users[0], nil
}
