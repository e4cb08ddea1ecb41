package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusfinds/campusfinds/store"
)

// stubStore fakes the data layer with an in-memory session table that
// enforces the one-active-session-per-user constraint the way the real
// store's partial unique index does.
type stubStore struct {
	mu       sync.Mutex
	nextID   int32
	sessions map[int32]*store.ChatSession
	messages []*store.ChatMessage
	user     *store.User
	stats    *store.ListingStats
	listings []*store.Listing

	creates int
}

func newStubStore() *stubStore {
	return &stubStore{sessions: map[int32]*store.ChatSession{}}
}

func (s *stubStore) GetOrCreateChatSession(_ context.Context, userID int32) (*store.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.UserID == userID && sess.IsActive {
			return sess, nil
		}
	}
	s.creates++
	s.nextID++
	sess := &store.ChatSession{ID: s.nextID, UserID: userID, IsActive: true}
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *stubStore) ListChatSessions(_ context.Context, find *store.FindChatSession) ([]*store.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*store.ChatSession
	// newest first, like the real driver
	for id := s.nextID; id >= 1; id-- {
		sess, ok := s.sessions[id]
		if !ok {
			continue
		}
		if find.UserID != nil && sess.UserID != *find.UserID {
			continue
		}
		if find.IsActive != nil && sess.IsActive != *find.IsActive {
			continue
		}
		out = append(out, sess)
		if find.Limit != nil && len(out) >= *find.Limit {
			break
		}
	}
	return out, nil
}

func (s *stubStore) UpdateChatSession(_ context.Context, update *store.UpdateChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[update.ID]
	if !ok {
		return nil
	}
	if update.IsActive != nil {
		sess.IsActive = *update.IsActive
	}
	return nil
}

func (s *stubStore) DeleteChatSession(_ context.Context, del *store.DeleteChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.messages[:0]
	for _, m := range s.messages {
		if m.SessionID != del.ID {
			kept = append(kept, m)
		}
	}
	s.messages = kept
	delete(s.sessions, del.ID)
	return nil
}

func (s *stubStore) CreateChatMessage(_ context.Context, create *store.ChatMessage) (*store.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	msg := &store.ChatMessage{
		ID:        s.nextID,
		SessionID: create.SessionID,
		Role:      create.Role,
		Content:   create.Content,
	}
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *stubStore) ListChatMessages(_ context.Context, find *store.FindChatMessage) ([]*store.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*store.ChatMessage
	// newest first, like the real driver
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if find.SessionID != nil && m.SessionID != *find.SessionID {
			continue
		}
		out = append(out, m)
		if find.Limit != nil && len(out) >= *find.Limit {
			break
		}
	}
	return out, nil
}

func (s *stubStore) GetUser(_ context.Context, _ int32) (*store.User, error) {
	return s.user, nil
}

func (s *stubStore) GetListingStats(_ context.Context) (*store.ListingStats, error) {
	return s.stats, nil
}

func (s *stubStore) ListListings(_ context.Context, find *store.FindListing) ([]*store.Listing, error) {
	return s.filterListings(find), nil
}

func (s *stubStore) CountListings(_ context.Context, find *store.FindListing) (int32, error) {
	return int32(len(s.filterListings(find))), nil
}

func (s *stubStore) filterListings(find *store.FindListing) []*store.Listing {
	var out []*store.Listing
	for _, l := range s.listings {
		if find.SellerID != nil && l.SellerID != *find.SellerID {
			continue
		}
		if find.Campus != nil && l.Campus != *find.Campus {
			continue
		}
		out = append(out, l)
		if find.Limit != nil && len(out) >= *find.Limit {
			break
		}
	}
	return out
}

func TestAddMessageEvictsFromFront(t *testing.T) {
	c := CreateInitialContext(nil)
	for i := 0; i < 25; i++ {
		c.AddMessage(RoleUser, string(rune('a'+i)))
	}

	require.Len(t, c.Messages, WindowSize)
	assert.Equal(t, string(rune('a'+5)), c.Messages[0].Content, "oldest five evicted")
	assert.Equal(t, string(rune('a'+24)), c.Messages[WindowSize-1].Content, "relative order preserved")
}

func TestGetOrCreateSessionConcurrent(t *testing.T) {
	stub := newStubStore()
	m := NewManager(stub, nil)

	const goroutines = 16
	var wg sync.WaitGroup
	ids := make([]int32, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, err := m.GetOrCreateSession(context.Background(), 7)
			if assert.NoError(t, err) {
				ids[i] = sess.ID
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, stub.creates, "exactly one session created")
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	active := 0
	for _, sess := range stub.sessions {
		if sess.UserID == 7 && sess.IsActive {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestClearSessionStartsFreshNextTime(t *testing.T) {
	stub := newStubStore()
	m := NewManager(stub, nil)
	ctx := context.Background()

	first, err := m.GetOrCreateSession(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, m.ClearSession(ctx, first.ID))
	assert.False(t, stub.sessions[first.ID].IsActive)

	second, err := m.GetOrCreateSession(ctx, 1)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestDeleteSessionRemovesMessages(t *testing.T) {
	stub := newStubStore()
	m := NewManager(stub, nil)
	ctx := context.Background()

	sess, err := m.GetOrCreateSession(ctx, 1)
	require.NoError(t, err)
	_, err = m.AppendMessage(ctx, sess.ID, store.ChatMessageRoleUser, "hello")
	require.NoError(t, err)

	require.NoError(t, m.DeleteSession(ctx, sess.ID))

	assert.Empty(t, stub.messages)
	assert.NotContains(t, stub.sessions, sess.ID)
}

func TestHistoryChronological(t *testing.T) {
	stub := newStubStore()
	m := NewManager(stub, nil)
	ctx := context.Background()

	sess, err := m.GetOrCreateSession(ctx, 1)
	require.NoError(t, err)
	for _, content := range []string{"one", "two", "three"} {
		_, err := m.AppendMessage(ctx, sess.ID, store.ChatMessageRoleUser, content)
		require.NoError(t, err)
	}

	msgs, err := m.History(ctx, sess.ID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "one", msgs[0].Content)
	assert.Equal(t, "three", msgs[2].Content)
}

func TestBuildContext(t *testing.T) {
	stub := newStubStore()
	stub.user = &store.User{ID: 1, Name: "Sam", University: "Stanford University"}
	price := 50.0
	stub.listings = []*store.Listing{
		{ID: 9, Title: "Desk", Price: &price, Category: "For Sale", Campus: "UC Berkeley", SellerID: 2},
		{ID: 11, Title: "Mini fridge", Category: "For Sale", Campus: "Stanford University", SellerID: 1},
		{ID: 12, Title: "Bike lock", Category: "For Sale", Campus: "UC Berkeley", SellerID: 1},
	}
	stub.stats = &store.ListingStats{
		TotalCount:        12,
		PopularCategories: []store.CategoryCount{{Category: "For Sale", Count: 8}},
	}
	m := NewManager(stub, nil)
	ctx := context.Background()

	sess, err := m.GetOrCreateSession(ctx, 1)
	require.NoError(t, err)
	_, err = m.AppendMessage(ctx, sess.ID, store.ChatMessageRoleUser, "hi")
	require.NoError(t, err)
	_, err = m.AppendMessage(ctx, sess.ID, store.ChatMessageRoleAssistant, "hello!")
	require.NoError(t, err)

	conv := m.BuildContext(ctx, 1, sess.ID)

	require.NotNil(t, conv.User)
	assert.Equal(t, "Stanford University", conv.User.University)
	assert.Equal(t, int32(2), conv.User.PostsCount)
	assert.Equal(t, int32(1), conv.User.UniversityPostsCount)
	require.NotNil(t, conv.Marketplace)
	assert.Equal(t, int32(12), conv.Marketplace.TotalListings)
	require.Len(t, conv.Marketplace.RecentListings, 3)
	assert.Equal(t, "/post/9", conv.Marketplace.RecentListings[0].PostURL)
	require.Len(t, conv.Marketplace.UniversityListings, 1)
	assert.Equal(t, "Mini fridge", conv.Marketplace.UniversityListings[0].Title)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, RoleUser, conv.Messages[0].Role)
	assert.Equal(t, RoleAssistant, conv.Messages[1].Role)
}

func TestListSessionsIncludesArchived(t *testing.T) {
	stub := newStubStore()
	m := NewManager(stub, nil)
	ctx := context.Background()

	first, err := m.GetOrCreateSession(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, m.ClearSession(ctx, first.ID))
	second, err := m.GetOrCreateSession(ctx, 1)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	sessions, err := m.ListSessions(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, second.ID, sessions[0].ID)

	limited, err := m.ListSessions(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, second.ID, limited[0].ID)
}

func TestConfigureOverridesWindow(t *testing.T) {
	stub := newStubStore()
	m := NewManager(stub, nil)
	m.Configure(3, 0)
	ctx := context.Background()

	sess, err := m.GetOrCreateSession(ctx, 1)
	require.NoError(t, err)
	for _, content := range []string{"a", "b", "c", "d", "e"} {
		_, err = m.AppendMessage(ctx, sess.ID, store.ChatMessageRoleUser, content)
		require.NoError(t, err)
	}

	conv := m.BuildContext(ctx, 1, sess.ID)
	require.Len(t, conv.Messages, 3)
	assert.Equal(t, "c", conv.Messages[0].Content)
	assert.Equal(t, "e", conv.Messages[2].Content)
}
