// Package session owns the chat session lifecycle and the conversational
// context handed to the generative collaborator. A user has at most one
// active session; clearing a session archives it so the next message starts
// a fresh one.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/campusfinds/campusfinds/plugin/assistant/timeout"
	"github.com/campusfinds/campusfinds/store"
)

// DefaultHistoryLimit is how many persisted messages History returns when
// the caller does not ask for a specific count.
const DefaultHistoryLimit = 50

// recentListingsLimit caps the marketplace snapshot embedded in prompts.
const recentListingsLimit = 10

// Store is the slice of the data layer the manager depends on.
type Store interface {
	GetOrCreateChatSession(ctx context.Context, userID int32) (*store.ChatSession, error)
	ListChatSessions(ctx context.Context, find *store.FindChatSession) ([]*store.ChatSession, error)
	UpdateChatSession(ctx context.Context, update *store.UpdateChatSession) error
	DeleteChatSession(ctx context.Context, delete *store.DeleteChatSession) error
	CreateChatMessage(ctx context.Context, create *store.ChatMessage) (*store.ChatMessage, error)
	ListChatMessages(ctx context.Context, find *store.FindChatMessage) ([]*store.ChatMessage, error)
	GetUser(ctx context.Context, id int32) (*store.User, error)
	GetListingStats(ctx context.Context) (*store.ListingStats, error)
	ListListings(ctx context.Context, find *store.FindListing) ([]*store.Listing, error)
	CountListings(ctx context.Context, find *store.FindListing) (int32, error)
}

// Manager coordinates session rows and context assembly.
type Manager struct {
	store  Store
	logger *slog.Logger

	window       int
	historyLimit int

	mu        sync.Mutex
	userLocks map[int32]*sync.Mutex
}

// NewManager returns a session manager backed by the given store.
func NewManager(s Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:        s,
		logger:       logger,
		window:       WindowSize,
		historyLimit: DefaultHistoryLimit,
		userLocks:    make(map[int32]*sync.Mutex),
	}
}

// Configure overrides the window and history bounds. Values <= 0 keep the
// package defaults.
func (m *Manager) Configure(window, historyLimit int) {
	if window > 0 {
		m.window = window
	}
	if historyLimit > 0 {
		m.historyLimit = historyLimit
	}
}

// lockFor returns the per-user mutex, creating it on first use. The store's
// partial unique index already prevents duplicate active sessions; the mutex
// keeps near-simultaneous first messages from burning conflicting inserts.
func (m *Manager) lockFor(userID int32) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		m.userLocks[userID] = l
	}
	return l
}

// GetOrCreateSession returns the user's active session, creating one when
// none exists.
func (m *Manager) GetOrCreateSession(ctx context.Context, userID int32) (*store.ChatSession, error) {
	l := m.lockFor(userID)
	l.Lock()
	defer l.Unlock()

	session, err := m.store.GetOrCreateChatSession(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get or create chat session")
	}
	return session, nil
}

// ClearSession archives a session. Its messages stay persisted; the user's
// next message starts a new session.
func (m *Manager) ClearSession(ctx context.Context, sessionID int32) error {
	inactive := false
	now := time.Now().Unix()
	err := m.store.UpdateChatSession(ctx, &store.UpdateChatSession{
		ID:        sessionID,
		IsActive:  &inactive,
		UpdatedTs: &now,
	})
	return errors.Wrap(err, "clear chat session")
}

// DeleteSession removes a session and all its messages. Messages go first so
// they never outlive their session.
func (m *Manager) DeleteSession(ctx context.Context, sessionID int32) error {
	err := m.store.DeleteChatSession(ctx, &store.DeleteChatSession{ID: sessionID})
	return errors.Wrap(err, "delete chat session")
}

// ListSessions returns the user's sessions, newest first. limit <= 0 means
// no bound.
func (m *Manager) ListSessions(ctx context.Context, userID int32, limit int) ([]*store.ChatSession, error) {
	find := &store.FindChatSession{UserID: &userID}
	if limit > 0 {
		find.Limit = &limit
	}
	sessions, err := m.store.ListChatSessions(ctx, find)
	if err != nil {
		return nil, errors.Wrap(err, "list chat sessions")
	}
	return sessions, nil
}

// AppendMessage persists one turn to the session log.
func (m *Manager) AppendMessage(ctx context.Context, sessionID int32, role store.ChatMessageRole, content string) (*store.ChatMessage, error) {
	msg, err := m.store.CreateChatMessage(ctx, &store.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
	})
	if err != nil {
		return nil, errors.Wrap(err, "append chat message")
	}
	return msg, nil
}

// History returns up to limit persisted messages in chronological order.
// limit <= 0 means the configured history limit.
func (m *Manager) History(ctx context.Context, sessionID int32, limit int) ([]*store.ChatMessage, error) {
	if limit <= 0 {
		limit = m.historyLimit
	}
	msgs, err := m.store.ListChatMessages(ctx, &store.FindChatMessage{
		SessionID: &sessionID,
		Limit:     &limit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "list chat messages")
	}
	// The store returns newest first so the limit keeps the most recent
	// messages; callers read oldest to newest.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// recentListings maps store rows to the compact prompt view.
func recentListings(listings []*store.Listing) []RecentListing {
	out := make([]RecentListing, 0, len(listings))
	for _, l := range listings {
		out = append(out, RecentListing{
			Title:    l.Title,
			Price:    l.Price,
			Category: l.Category,
			Campus:   l.Campus,
			PostURL:  fmt.Sprintf("/post/%d", l.ID),
		})
	}
	return out
}

// BuildContext assembles the conversational context for one inbound
// message: the recent window plus user and marketplace snapshots. The
// enrichment reads are independent, so they run concurrently; any single
// failure degrades that snapshot to empty rather than failing the message.
func (m *Manager) BuildContext(ctx context.Context, userID, sessionID int32) *ConversationContext {
	conv := &ConversationContext{}
	conv.SetWindow(m.window)

	windowLimit := m.window
	var (
		user       *store.User
		postsCount int32
		stats      *store.ListingStats
		recent     []*store.Listing
		history    []*store.ChatMessage
	)

	g, groupCtx := errgroup.WithContext(ctx)
	enrichCtx, cancel := context.WithTimeout(groupCtx, timeout.EnrichmentTimeout)
	defer cancel()

	g.Go(func() error {
		u, err := m.store.GetUser(enrichCtx, userID)
		if err != nil {
			m.logger.WarnContext(enrichCtx, "context enrichment: user lookup failed",
				slog.Int("user_id", int(userID)), slog.String("error", err.Error()))
			return nil
		}
		user = u
		return nil
	})
	g.Go(func() error {
		count, err := m.store.CountListings(enrichCtx, &store.FindListing{SellerID: &userID})
		if err != nil {
			m.logger.WarnContext(enrichCtx, "context enrichment: posts count failed",
				slog.Int("user_id", int(userID)), slog.String("error", err.Error()))
			return nil
		}
		postsCount = count
		return nil
	})
	g.Go(func() error {
		s, err := m.store.GetListingStats(enrichCtx)
		if err != nil {
			m.logger.WarnContext(enrichCtx, "context enrichment: stats lookup failed",
				slog.String("error", err.Error()))
			return nil
		}
		stats = s
		return nil
	})
	g.Go(func() error {
		limit := recentListingsLimit
		ls, err := m.store.ListListings(enrichCtx, &store.FindListing{Limit: &limit})
		if err != nil {
			m.logger.WarnContext(enrichCtx, "context enrichment: recent listings failed",
				slog.String("error", err.Error()))
			return nil
		}
		recent = ls
		return nil
	})
	g.Go(func() error {
		msgs, err := m.store.ListChatMessages(enrichCtx, &store.FindChatMessage{
			SessionID: &sessionID,
			Limit:     &windowLimit,
		})
		if err != nil {
			m.logger.WarnContext(enrichCtx, "context enrichment: history failed",
				slog.Int("session_id", int(sessionID)), slog.String("error", err.Error()))
			return nil
		}
		history = msgs
		return nil
	})
	// Workers swallow their own errors, Wait only joins them.
	_ = g.Wait()

	// The campus-scoped reads need the user's university, so they run as a
	// second concurrent phase once the profile is in hand.
	var (
		universityPostsCount int32
		universityRecent     []*store.Listing
	)
	if user != nil && user.University != "" {
		g2, _ := errgroup.WithContext(enrichCtx)
		g2.Go(func() error {
			count, err := m.store.CountListings(enrichCtx, &store.FindListing{
				SellerID: &userID,
				Campus:   &user.University,
			})
			if err != nil {
				m.logger.WarnContext(enrichCtx, "context enrichment: university posts count failed",
					slog.Int("user_id", int(userID)), slog.String("error", err.Error()))
				return nil
			}
			universityPostsCount = count
			return nil
		})
		g2.Go(func() error {
			limit := recentListingsLimit
			ls, err := m.store.ListListings(enrichCtx, &store.FindListing{
				Campus: &user.University,
				Limit:  &limit,
			})
			if err != nil {
				m.logger.WarnContext(enrichCtx, "context enrichment: university listings failed",
					slog.String("campus", user.University), slog.String("error", err.Error()))
				return nil
			}
			universityRecent = ls
			return nil
		})
		_ = g2.Wait()
	}

	if user != nil {
		conv.User = &UserContext{
			ID:                   user.ID,
			Name:                 user.Name,
			Email:                user.Email,
			University:           user.University,
			PostsCount:           postsCount,
			UniversityPostsCount: universityPostsCount,
		}
	}

	mc := &MarketplaceContext{}
	if stats != nil {
		mc.TotalListings = stats.TotalCount
		for _, cc := range stats.PopularCategories {
			mc.PopularCategories = append(mc.PopularCategories, CategoryCount{
				Category: cc.Category,
				Count:    cc.Count,
			})
		}
	}
	mc.RecentListings = recentListings(recent)
	mc.UniversityListings = recentListings(universityRecent)
	conv.Marketplace = mc

	// History arrives newest first; replay oldest first into the window.
	for i := len(history) - 1; i >= 0; i-- {
		role := RoleUser
		if history[i].Role == store.ChatMessageRoleAssistant {
			role = RoleAssistant
		}
		conv.AddMessage(role, history[i].Content)
	}
	return conv
}
