package session

// WindowSize bounds the in-memory conversational window handed to the
// generative collaborator. The persisted message log is unbounded.
const WindowSize = 20

// Role labels one side of the conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn inside the in-memory window.
type Message struct {
	Role    Role
	Content string
}

// UserContext summarizes who the assistant is talking to.
type UserContext struct {
	ID         int32
	Name       string
	Email      string
	University string
	// PostsCount is how many active listings the user has posted.
	PostsCount int32
	// UniversityPostsCount is how many of those are on their own campus.
	UniversityPostsCount int32
}

// MarketplaceContext carries the marketplace snapshot used to ground the
// generative fallback prompt.
type MarketplaceContext struct {
	TotalListings     int32
	PopularCategories []CategoryCount
	// RecentListings is the newest slice of the whole marketplace;
	// UniversityListings narrows to the user's own campus.
	RecentListings     []RecentListing
	UniversityListings []RecentListing
}

// CategoryCount is a category with its listing count.
type CategoryCount struct {
	Category string
	Count    int32
}

// RecentListing is the compact listing view embedded in prompts.
type RecentListing struct {
	Title    string
	Price    *float64
	Category string
	Campus   string
	PostURL  string
}

// ConversationContext is everything the orchestrator needs to answer one
// message: the bounded message window plus user and marketplace snapshots.
type ConversationContext struct {
	Messages    []Message
	User        *UserContext
	Marketplace *MarketplaceContext

	// window overrides WindowSize when positive.
	window int
}

// CreateInitialContext starts an empty conversation. user may be nil for
// anonymous callers.
func CreateInitialContext(user *UserContext) *ConversationContext {
	return &ConversationContext{User: user}
}

// SetWindow overrides the message window bound. Values <= 0 keep WindowSize.
func (c *ConversationContext) SetWindow(n int) {
	c.window = n
}

// AddMessage appends a turn and evicts from the front until the window holds
// at most WindowSize messages (or the configured override), preserving
// relative order.
func (c *ConversationContext) AddMessage(role Role, content string) {
	w := c.window
	if w <= 0 {
		w = WindowSize
	}
	c.Messages = append(c.Messages, Message{Role: role, Content: content})
	if excess := len(c.Messages) - w; excess > 0 {
		c.Messages = c.Messages[excess:]
	}
}

// LastTurns returns up to n most recent messages in chronological order.
func (c *ConversationContext) LastTurns(n int) []Message {
	if len(c.Messages) <= n {
		return c.Messages
	}
	return c.Messages[len(c.Messages)-n:]
}
