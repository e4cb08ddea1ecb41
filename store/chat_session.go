package store

// ChatSession is one conversation thread between a user and the assistant.
// At most one session per user is active at any time; the partial unique
// index on (user_id) WHERE is_active enforces this at the storage level.
type ChatSession struct {
	ID        int32
	UID       string
	UserID    int32
	IsActive  bool
	CreatedTs int64
	UpdatedTs int64
}

type FindChatSession struct {
	ID       *int32
	UID      *string
	UserID   *int32
	IsActive *bool
	Limit    *int
}

type UpdateChatSession struct {
	ID        int32
	IsActive  *bool
	UpdatedTs *int64
}

type DeleteChatSession struct {
	ID int32
}

type ChatMessageRole string

const (
	ChatMessageRoleUser      ChatMessageRole = "USER"
	ChatMessageRoleAssistant ChatMessageRole = "ASSISTANT"
)

// ChatMessage is one persisted turn. The persisted log is append-only and
// unbounded; the in-memory window sent to the generative collaborator is
// bounded separately.
type ChatMessage struct {
	ID        int32
	UID       string
	SessionID int32
	Role      ChatMessageRole
	Content   string
	CreatedTs int64
}

type FindChatMessage struct {
	ID        *int32
	UID       *string
	SessionID *int32
	Limit     *int
}

type DeleteChatMessage struct {
	ID        *int32
	SessionID *int32
}
