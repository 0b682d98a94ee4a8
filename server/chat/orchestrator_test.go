package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/melodic-ai/melodic/server/ai"
	apperrors "github.com/melodic-ai/melodic/server/internal/errors"
	"github.com/melodic-ai/melodic/store"
)

// fakeProvider records requests and replies with a canned completion.
type fakeProvider struct {
	name     string
	reply    string
	err      error
	requests []*ai.CompletionRequest
}

func (p *fakeProvider) Name() string {
	if p.name == "" {
		return "openai"
	}
	return p.name
}

func (p *fakeProvider) Complete(_ context.Context, request *ai.CompletionRequest) (*ai.Completion, error) {
	p.requests = append(p.requests, request)
	if p.err != nil {
		return nil, p.err
	}
	return &ai.Completion{
		ID:    "cmpl-test",
		Model: request.Model,
		Choices: []ai.Choice{
			{Index: 0, Message: ai.Message{Role: "assistant", Content: p.reply}},
		},
		Usage: ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

// memStore is an in-memory ContextStore + MessageStore with injectable
// failures per operation.
type memStore struct {
	contexts map[string]*store.UserContext
	messages []*store.ChatMessage
	nextID   int32

	getContextErr error
	upsertErr     error
	createErr     error
	listErr       error
	deleteErr     error
}

func newMemStore() *memStore {
	return &memStore{contexts: map[string]*store.UserContext{}}
}

func (m *memStore) GetUserContext(_ context.Context, find *store.FindUserContext) (*store.UserContext, error) {
	if m.getContextErr != nil {
		return nil, m.getContextErr
	}
	record, ok := m.contexts[find.SessionID]
	if !ok {
		return nil, nil
	}
	return record, nil
}

func (m *memStore) UpsertUserContext(_ context.Context, upsert *store.UpsertUserContext) (*store.UserContext, error) {
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	m.nextID++
	record := &store.UserContext{
		ID:            m.nextID,
		SessionID:     upsert.SessionID,
		Context:       upsert.Context,
		LastUpdatedTs: upsert.LastUpdatedTs,
	}
	m.contexts[upsert.SessionID] = record
	return record, nil
}

func (m *memStore) CreateChatMessage(_ context.Context, create *store.ChatMessage) (*store.ChatMessage, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	create.ID = m.nextID
	m.messages = append(m.messages, create)
	return create, nil
}

func (m *memStore) ListChatMessages(_ context.Context, find *store.FindChatMessage) ([]*store.ChatMessage, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	list := []*store.ChatMessage{}
	for _, message := range m.messages {
		if find.SessionID != nil && message.SessionID != *find.SessionID {
			continue
		}
		list = append(list, message)
	}
	// Newest first, the same order the SQL drivers return.
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedTs != list[j].CreatedTs {
			return list[i].CreatedTs > list[j].CreatedTs
		}
		return list[i].ID > list[j].ID
	})
	if find.Limit != nil && len(list) > *find.Limit {
		list = list[:*find.Limit]
	}
	return list, nil
}

func (m *memStore) DeleteChatMessages(_ context.Context, delete *store.DeleteChatMessage) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	kept := m.messages[:0]
	for _, message := range m.messages {
		if message.SessionID != delete.SessionID {
			kept = append(kept, message)
		}
	}
	m.messages = kept
	return nil
}

func newTestService(provider *fakeProvider, st *memStore) *Service {
	return NewService(provider, NewContextManager(st), NewMessageService(st))
}

func TestChatGeneratesSessionID(t *testing.T) {
	provider := &fakeProvider{reply: "hello!"}
	st := newMemStore()
	service := newTestService(provider, st)

	result, err := service.Chat(context.Background(), &ChatRequest{Message: "hi"})
	require.NoError(t, err)
	require.NotEmpty(t, result.SessionID)
	require.Equal(t, "hello!", result.Completion.Content())

	// A supplied session id is kept as-is.
	result, err = service.Chat(context.Background(), &ChatRequest{Message: "hi", SessionID: "session-1"})
	require.NoError(t, err)
	require.Equal(t, "session-1", result.SessionID)
}

func TestChatRequiresMessage(t *testing.T) {
	service := newTestService(&fakeProvider{reply: "x"}, newMemStore())

	_, err := service.Chat(context.Background(), &ChatRequest{})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument))
}

func TestChatInjectsExtractedName(t *testing.T) {
	provider := &fakeProvider{reply: "nice to meet you"}
	st := newMemStore()
	service := newTestService(provider, st)

	result, err := service.Chat(context.Background(), &ChatRequest{
		Message:   "My name is Dana",
		SessionID: "session-1",
	})
	require.NoError(t, err)
	require.Contains(t, result.SystemPrompt, "The user's name is Dana.")
	require.Contains(t, result.SystemPrompt, "Use this information to personalize your responses when appropriate.")

	// The fact was persisted and flows into the next turn's prompt even
	// though that message mentions no name.
	result, err = service.Chat(context.Background(), &ChatRequest{
		Message:   "recommend a song",
		SessionID: "session-1",
	})
	require.NoError(t, err)
	require.Contains(t, result.SystemPrompt, "The user's name is Dana.")
}

func TestChatHistoryBound(t *testing.T) {
	provider := &fakeProvider{reply: "ok"}
	service := newTestService(provider, newMemStore())

	history := make([]HistoryEntry, 0, MaxConversationHistory+10)
	for i := 0; i < MaxConversationHistory+10; i++ {
		history = append(history, HistoryEntry{Role: "user", Content: fmt.Sprintf("turn %d", i)})
	}

	_, err := service.Chat(context.Background(), &ChatRequest{
		Message:             "latest",
		SessionID:           "session-1",
		ConversationHistory: history,
	})
	require.NoError(t, err)

	require.Len(t, provider.requests, 1)
	sent := provider.requests[0].Messages
	// system + bounded history + new user message
	require.Len(t, sent, 1+MaxConversationHistory+1)
	require.Equal(t, "system", sent[0].Role)
	require.Equal(t, "turn 10", sent[1].Content)
	require.Equal(t, "latest", sent[len(sent)-1].Content)
}

func TestChatProviderDefaults(t *testing.T) {
	provider := &fakeProvider{reply: "ok"}
	service := newTestService(provider, newMemStore())

	_, err := service.Chat(context.Background(), &ChatRequest{Message: "hi"})
	require.NoError(t, err)

	request := provider.requests[0]
	require.Equal(t, DefaultChatModel, request.Model)
	require.InDelta(t, 0.7, float64(request.Temperature), 0.0001)
	require.Equal(t, maxTokensDirect, request.MaxTokens)
}

func TestChatGatewayTokenBudget(t *testing.T) {
	provider := &fakeProvider{name: "openrouter", reply: "ok"}
	service := newTestService(provider, newMemStore())

	_, err := service.Chat(context.Background(), &ChatRequest{Message: "hi", Model: "openai/gpt-4o"})
	require.NoError(t, err)
	require.Equal(t, maxTokensGateway, provider.requests[0].MaxTokens)
}

func TestChatPersistsTurn(t *testing.T) {
	provider := &fakeProvider{reply: "the answer"}
	st := newMemStore()
	service := newTestService(provider, st)

	_, err := service.Chat(context.Background(), &ChatRequest{Message: "a question", SessionID: "session-1"})
	require.NoError(t, err)

	stored, err := NewMessageService(st).GetMessages(context.Background(), "session-1", 10)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.Equal(t, store.RoleUser, stored[0].Role)
	require.Equal(t, "a question", stored[0].Content)
	require.Equal(t, store.RoleAssistant, stored[1].Role)
	require.Equal(t, "the answer", stored[1].Content)
}

func TestChatSurvivesBrokenStore(t *testing.T) {
	provider := &fakeProvider{reply: "still here"}
	st := newMemStore()
	st.getContextErr = errors.New("disk on fire")
	st.upsertErr = errors.New("disk on fire")
	st.createErr = errors.New("disk on fire")
	service := newTestService(provider, st)

	result, err := service.Chat(context.Background(), &ChatRequest{
		Message:   "My name is Dana",
		SessionID: "session-1",
	})
	require.NoError(t, err)
	require.Equal(t, "still here", result.Completion.Content())
	// Extraction still ran against the degraded empty context.
	require.Contains(t, result.SystemPrompt, "The user's name is Dana.")
}

func TestChatProviderFailureIsFatal(t *testing.T) {
	provider := &fakeProvider{err: apperrors.Upstream(502, "bad gateway")}
	st := newMemStore()
	service := newTestService(provider, st)

	_, err := service.Chat(context.Background(), &ChatRequest{Message: "hi", SessionID: "session-1"})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.ErrCodeUpstreamFailed))
	// Nothing is persisted for a failed turn.
	require.Empty(t, st.messages)
}

func TestChatCustomSystemPrompt(t *testing.T) {
	provider := &fakeProvider{reply: "ok"}
	service := newTestService(provider, newMemStore())

	result, err := service.Chat(context.Background(), &ChatRequest{
		Message:      "hi",
		SessionID:    "session-1",
		SystemPrompt: "You are a pirate.",
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(result.SystemPrompt, "You are a pirate."))
}
