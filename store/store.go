package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/campusfinds/campusfinds/internal/profile"
	"github.com/campusfinds/campusfinds/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache settings
	cacheConfig cache.Config

	// Caches
	userCache *cache.Cache // cache for users
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	// Default cache settings
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
		OnEviction:      nil,
	}

	store := &Store{
		driver:      driver,
		profile:     profile,
		cacheConfig: cacheConfig,
		userCache:   cache.New(cacheConfig),
	}

	return store
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.userCache.Close()

	return s.driver.Close()
}

func (s *Store) CreateListing(ctx context.Context, create *Listing) (*Listing, error) {
	return s.driver.CreateListing(ctx, create)
}

func (s *Store) ListListings(ctx context.Context, find *FindListing) ([]*Listing, error) {
	return s.driver.ListListings(ctx, find)
}

func (s *Store) UpdateListing(ctx context.Context, update *UpdateListing) error {
	return s.driver.UpdateListing(ctx, update)
}

func (s *Store) DeleteListing(ctx context.Context, delete *DeleteListing) error {
	return s.driver.DeleteListing(ctx, delete)
}

func (s *Store) CountListings(ctx context.Context, find *FindListing) (int32, error) {
	return s.driver.CountListings(ctx, find)
}

// GetListingStats returns marketplace-wide statistics for context enrichment.
func (s *Store) GetListingStats(ctx context.Context) (*ListingStats, error) {
	normal := Normal
	total, err := s.driver.CountListings(ctx, &FindListing{RowStatus: &normal})
	if err != nil {
		return nil, err
	}
	counts, err := s.driver.GetCategoryCounts(ctx)
	if err != nil {
		return nil, err
	}
	campuses, err := s.driver.GetCampusCounts(ctx)
	if err != nil {
		return nil, err
	}
	return &ListingStats{
		TotalCount:        total,
		PopularCategories: counts,
		CampusCounts:      campuses,
	}, nil
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	user, err := s.driver.CreateUser(ctx, create)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(ctx, userCacheKey(user.ID), user)
	return user, nil
}

// GetUser returns the user by id, consulting the cache first.
func (s *Store) GetUser(ctx context.Context, id int32) (*User, error) {
	if cached, ok := s.userCache.Get(ctx, userCacheKey(id)); ok {
		if user, ok := cached.(*User); ok {
			return user, nil
		}
	}

	users, err := s.driver.ListUsers(ctx, &FindUser{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}

	user := users[0]
	s.userCache.Set(ctx, userCacheKey(id), user)
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	return s.driver.ListUsers(ctx, find)
}

func (s *Store) DeleteUser(ctx context.Context, delete *DeleteUser) error {
	s.userCache.Delete(ctx, userCacheKey(delete.ID))
	return s.driver.DeleteUser(ctx, delete)
}

// GetOrCreateChatSession returns the user's active session, creating one if
// none exists. The create path tolerates losing the insert race: the partial
// unique index keeps a second concurrently-active session from appearing, and
// the loser re-reads the winner's row.
func (s *Store) GetOrCreateChatSession(ctx context.Context, userID int32) (*ChatSession, error) {
	active := true
	find := &FindChatSession{UserID: &userID, IsActive: &active}

	sessions, err := s.driver.ListChatSessions(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(sessions) > 0 {
		return sessions[0], nil
	}

	now := time.Now().Unix()
	session, err := s.driver.CreateChatSession(ctx, &ChatSession{
		UID:       shortuuid.New(),
		UserID:    userID,
		IsActive:  true,
		CreatedTs: now,
		UpdatedTs: now,
	})
	if err != nil {
		return nil, err
	}
	if session != nil {
		return session, nil
	}

	// Lost the race; the winner's session is active now.
	sessions, err = s.driver.ListChatSessions(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("no active session found for user %d after conflicting insert", userID)
	}
	return sessions[0], nil
}

func (s *Store) ListChatSessions(ctx context.Context, find *FindChatSession) ([]*ChatSession, error) {
	return s.driver.ListChatSessions(ctx, find)
}

func (s *Store) UpdateChatSession(ctx context.Context, update *UpdateChatSession) error {
	return s.driver.UpdateChatSession(ctx, update)
}

func (s *Store) DeleteChatSession(ctx context.Context, delete *DeleteChatSession) error {
	return s.driver.DeleteChatSession(ctx, delete)
}

func (s *Store) CreateChatMessage(ctx context.Context, create *ChatMessage) (*ChatMessage, error) {
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	return s.driver.CreateChatMessage(ctx, create)
}

func (s *Store) ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error) {
	return s.driver.ListChatMessages(ctx, find)
}

func (s *Store) DeleteChatMessages(ctx context.Context, delete *DeleteChatMessage) error {
	return s.driver.DeleteChatMessages(ctx, delete)
}

func userCacheKey(id int32) string {
	return fmt.Sprintf("user:%d", id)
}
