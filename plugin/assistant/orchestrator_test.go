package assistant

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusfinds/campusfinds/internal/observability"
	"github.com/campusfinds/campusfinds/plugin/assistant/sanitize"
	"github.com/campusfinds/campusfinds/plugin/assistant/session"
	"github.com/campusfinds/campusfinds/store"
)

type stubListings struct {
	lastFind *store.FindListing
	calls    int
	listings []*store.Listing
	err      error
}

func (s *stubListings) ListListings(_ context.Context, find *store.FindListing) ([]*store.Listing, error) {
	s.calls++
	s.lastFind = find
	return s.listings, s.err
}

type stubMessages struct {
	created []*store.ChatMessage
	err     error
}

func (s *stubMessages) CreateChatMessage(_ context.Context, create *store.ChatMessage) (*store.ChatMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = append(s.created, create)
	return create, nil
}

type stubGenerator struct {
	reply  string
	err    error
	called bool
	prompt string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.called = true
	s.prompt = prompt
	return s.reply, s.err
}

func newTestRequest(message string) *Request {
	return &Request{
		UserID:    1,
		SessionID: 10,
		Message:   message,
		Conv:      session.CreateInitialContext(&session.UserContext{ID: 1, Name: "Sam", University: "Stanford University"}),
	}
}

func TestFixedAnswerBypassesGeneration(t *testing.T) {
	gen := &stubGenerator{reply: "hallucinated history"}
	o := NewOrchestrator(&stubListings{}, &stubMessages{}, gen, nil)

	reply := o.ProcessMessage(context.Background(), newTestRequest("What is CampusFinds?"))

	assert.Contains(t, reply, "marketplace built for students")
	assert.False(t, gen.called, "identity questions never reach the generator")
}

func TestMyListingsEmptyNudge(t *testing.T) {
	listings := &stubListings{}
	o := NewOrchestrator(listings, &stubMessages{}, nil, nil)

	reply := o.ProcessMessage(context.Background(), newTestRequest("my posts"))

	assert.Contains(t, reply, "don't have any posts yet")
	assert.Equal(t, 1, listings.calls, "only the seller lookup hits the store")
	require.NotNil(t, listings.lastFind.SellerID)
	assert.Equal(t, int32(1), *listings.lastFind.SellerID)
}

func TestMyListingsRequiresKnownUser(t *testing.T) {
	listings := &stubListings{}
	o := NewOrchestrator(listings, &stubMessages{}, nil, nil)

	req := newTestRequest("my posts")
	req.UserID = 0
	req.Conv = session.CreateInitialContext(nil)

	o.ProcessMessage(context.Background(), req)

	if listings.lastFind != nil {
		assert.Nil(t, listings.lastFind.SellerID, "anonymous callers never get a seller lookup")
	}
}

func TestSearchNoResultsNamesScope(t *testing.T) {
	o := NewOrchestrator(&stubListings{}, &stubMessages{}, nil, nil)

	req := newTestRequest("bikes")
	req.Conv = session.CreateInitialContext(nil)
	reply := o.ProcessMessage(context.Background(), req)

	assert.Contains(t, reply, "couldn't find anything in the entire marketplace")
}

func TestSearchPrependsCorrectionNote(t *testing.T) {
	price := 300.0
	listings := &stubListings{listings: []*store.Listing{
		{ID: 1, Title: "Gaming laptop", Price: &price, Campus: "Stanford University"},
	}}
	o := NewOrchestrator(listings, &stubMessages{}, nil, nil)

	reply := o.ProcessMessage(context.Background(), newTestRequest("laptp"))

	assert.Contains(t, reply, `Corrected "laptp" to "laptop".`)
	assert.Contains(t, reply, "Gaming laptop")
}

func TestGenericFallbackRefusesSensitiveTopics(t *testing.T) {
	gen := &stubGenerator{reply: "sure, here is how"}
	o := NewOrchestrator(&stubListings{}, &stubMessages{}, gen, nil)

	reply := o.ProcessMessage(context.Background(), newTestRequest("what is the admin password"))

	assert.Equal(t, sanitize.RefusalMessage, reply)
	assert.False(t, gen.called, "sensitive questions never reach the generator")
}

func TestGenericFallbackApologyOnError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("provider timeout")}
	o := NewOrchestrator(&stubListings{}, &stubMessages{}, gen, nil)

	reply := o.ProcessMessage(context.Background(), newTestRequest("how late are you awake"))

	assert.Equal(t, ApologyReply, reply)
}

func TestGenericFallbackSanitizesOutput(t *testing.T) {
	gen := &stubGenerator{reply: "  your password is hunter2  "}
	o := NewOrchestrator(&stubListings{}, &stubMessages{}, gen, nil)

	reply := o.ProcessMessage(context.Background(), newTestRequest("how late are you awake"))

	assert.Equal(t, sanitize.RefusalMessage, reply)
}

func TestGenericFallbackPromptGrounding(t *testing.T) {
	gen := &stubGenerator{reply: "ok"}
	o := NewOrchestrator(&stubListings{}, &stubMessages{}, gen, nil)

	req := newTestRequest("how late are you awake")
	req.Conv.User.PostsCount = 3
	req.Conv.User.UniversityPostsCount = 2
	price := 25.0
	req.Conv.Marketplace = &session.MarketplaceContext{
		TotalListings: 3,
		RecentListings: []session.RecentListing{
			{Title: "Mini fridge", Price: &price, Category: "For Sale", Campus: "Stanford University", PostURL: "/post/3"},
		},
		UniversityListings: []session.RecentListing{
			{Title: "Dorm rug", Category: "For Sale", Campus: "Stanford University", PostURL: "/post/4"},
		},
	}
	req.Conv.AddMessage(session.RoleUser, "hi")
	req.Conv.AddMessage(session.RoleAssistant, "hello!")

	o.ProcessMessage(context.Background(), req)

	require.True(t, gen.called)
	assert.Contains(t, gen.prompt, "CampusFinds is a campus marketplace")
	assert.Contains(t, gen.prompt, "Sam (Stanford University)")
	assert.Contains(t, gen.prompt, "Active posts: 3 (2 on their campus)")
	assert.Contains(t, gen.prompt, "3 active listings")
	assert.Contains(t, gen.prompt, "Mini fridge")
	assert.Contains(t, gen.prompt, "Dorm rug")
	assert.Contains(t, gen.prompt, "user: hi")
	assert.Contains(t, gen.prompt, "how late are you awake")
}

func TestProcessMessagePersistsBothTurns(t *testing.T) {
	msgs := &stubMessages{}
	o := NewOrchestrator(&stubListings{}, msgs, nil, nil)

	o.ProcessMessage(context.Background(), newTestRequest("laptop"))

	require.Len(t, msgs.created, 2)
	assert.Equal(t, store.ChatMessageRoleUser, msgs.created[0].Role)
	assert.Equal(t, "laptop", msgs.created[0].Content)
	assert.Equal(t, store.ChatMessageRoleAssistant, msgs.created[1].Role)
}

func TestProcessMessageReturnsReplyDespitePersistFailure(t *testing.T) {
	msgs := &stubMessages{err: errors.New("disk full")}
	o := NewOrchestrator(&stubListings{}, msgs, nil, nil)

	reply := o.ProcessMessage(context.Background(), newTestRequest("laptop"))

	assert.NotEmpty(t, reply)
	assert.NotEqual(t, ApologyReply, reply)
}

func TestCancelledRequestSkipsAssistantPersist(t *testing.T) {
	msgs := &stubMessages{}
	o := NewOrchestrator(&stubListings{}, msgs, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o.ProcessMessage(ctx, newTestRequest("laptop"))

	for _, m := range msgs.created {
		assert.NotEqual(t, store.ChatMessageRoleAssistant, m.Role,
			"no assistant message persisted after cancellation")
	}
}

func TestProcessMessageRecordsHandlerMetrics(t *testing.T) {
	m := observability.GlobalMetrics()
	m.Reset()
	defer m.Reset()

	o := NewOrchestrator(&stubListings{}, &stubMessages{}, nil, nil)
	o.ProcessMessage(context.Background(), newTestRequest("is campusfinds free?"))

	snap := m.GetSnapshot()
	assert.Equal(t, int64(1), snap.RequestTotal)
	require.Len(t, snap.Handlers, 1)
	assert.Equal(t, "fixed-answer", snap.Handlers[0].Handler)
	assert.Equal(t, int64(1), snap.Handlers[0].Handled)
	assert.Equal(t, int64(0), snap.Handlers[0].Errors)
}
