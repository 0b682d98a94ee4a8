package store

// Role is the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one the store accepts.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

type ChatMessage struct {
	ID        int32
	UID       string
	UserID    *int32
	SessionID string
	Role      Role
	Content   string
	CreatedTs int64
}

type FindChatMessage struct {
	SessionID *string
	// Limit caps the number of rows returned, newest first.
	Limit *int
}

type DeleteChatMessage struct {
	SessionID string
}
