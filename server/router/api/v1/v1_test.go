package v1

import (
	"context"
	"database/sql"

	"github.com/melodic-ai/melodic/internal/profile"
	"github.com/melodic-ai/melodic/server/ai"
	"github.com/melodic-ai/melodic/server/chat"
	"github.com/melodic-ai/melodic/store"
)

// fakeDriver is an in-memory store.Driver for handler tests.
type fakeDriver struct {
	contexts map[string]*store.UserContext
	messages []*store.ChatMessage
	users    []*store.User
	nextID   int32

	listMessagesErr error
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{contexts: map[string]*store.UserContext{}}
}

func (*fakeDriver) GetDB() *sql.DB { return nil }
func (*fakeDriver) Close() error   { return nil }

func (*fakeDriver) IsInitialized(context.Context) (bool, error) { return true, nil }

func (d *fakeDriver) CreateChatMessage(_ context.Context, create *store.ChatMessage) (*store.ChatMessage, error) {
	d.nextID++
	create.ID = d.nextID
	d.messages = append(d.messages, create)
	return create, nil
}

func (d *fakeDriver) ListChatMessages(_ context.Context, find *store.FindChatMessage) ([]*store.ChatMessage, error) {
	if d.listMessagesErr != nil {
		return nil, d.listMessagesErr
	}
	list := []*store.ChatMessage{}
	for i := len(d.messages) - 1; i >= 0; i-- {
		message := d.messages[i]
		if find.SessionID != nil && message.SessionID != *find.SessionID {
			continue
		}
		list = append(list, message)
		if find.Limit != nil && len(list) >= *find.Limit {
			break
		}
	}
	return list, nil
}

func (d *fakeDriver) DeleteChatMessages(_ context.Context, delete *store.DeleteChatMessage) error {
	kept := d.messages[:0]
	for _, message := range d.messages {
		if message.SessionID != delete.SessionID {
			kept = append(kept, message)
		}
	}
	d.messages = kept
	return nil
}

func (d *fakeDriver) GetUserContext(_ context.Context, find *store.FindUserContext) (*store.UserContext, error) {
	return d.contexts[find.SessionID], nil
}

func (d *fakeDriver) UpsertUserContext(_ context.Context, upsert *store.UpsertUserContext) (*store.UserContext, error) {
	d.nextID++
	record := &store.UserContext{
		ID:            d.nextID,
		SessionID:     upsert.SessionID,
		Context:       upsert.Context,
		LastUpdatedTs: upsert.LastUpdatedTs,
	}
	d.contexts[upsert.SessionID] = record
	return record, nil
}

func (d *fakeDriver) CreateUser(_ context.Context, create *store.User) (*store.User, error) {
	d.nextID++
	create.ID = d.nextID
	d.users = append(d.users, create)
	return create, nil
}

func (d *fakeDriver) ListUsers(_ context.Context, find *store.FindUser) ([]*store.User, error) {
	list := []*store.User{}
	for _, user := range d.users {
		if find.ID != nil && user.ID != *find.ID {
			continue
		}
		if find.Username != nil && user.Username != *find.Username {
			continue
		}
		list = append(list, user)
	}
	return list, nil
}

// echoProvider answers every completion with a fixed reply.
type echoProvider struct {
	name  string
	reply string
	err   error
}

func (p *echoProvider) Name() string { return p.name }

func (p *echoProvider) Complete(_ context.Context, request *ai.CompletionRequest) (*ai.Completion, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &ai.Completion{
		ID:    "cmpl-1",
		Model: request.Model,
		Choices: []ai.Choice{
			{Index: 0, Message: ai.Message{Role: "assistant", Content: p.reply}},
		},
		Usage: ai.Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3},
	}, nil
}

func newTestProfile() *profile.Profile {
	return &profile.Profile{
		Mode:        "dev",
		Driver:      "sqlite",
		ChatModel:   "gpt-4o",
		SearchModel: "llama-3.1-sonar-small-128k-online",
	}
}

func newTestService(driver *fakeDriver, chatProvider, searchProvider ai.Provider, testProfile *profile.Profile) *APIV1Service {
	if testProfile == nil {
		testProfile = newTestProfile()
	}
	storeInstance := store.New(driver, testProfile)
	contextManager := chat.NewContextManager(storeInstance)
	messageService := chat.NewMessageService(storeInstance)
	chatService := chat.NewService(chatProvider, contextManager, messageService)
	searchService := chat.NewSearchService(searchProvider, "llama-3.1-sonar-small-128k-online")
	return NewAPIV1Service(testProfile, storeInstance, chatService, searchService, messageService, contextManager)
}
