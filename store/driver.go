package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Listing model related methods.
	CreateListing(ctx context.Context, create *Listing) (*Listing, error)
	ListListings(ctx context.Context, find *FindListing) ([]*Listing, error)
	UpdateListing(ctx context.Context, update *UpdateListing) error
	DeleteListing(ctx context.Context, delete *DeleteListing) error
	CountListings(ctx context.Context, find *FindListing) (int32, error)
	GetCategoryCounts(ctx context.Context) ([]CategoryCount, error)
	GetCampusCounts(ctx context.Context) ([]CampusCount, error)

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)
	DeleteUser(ctx context.Context, delete *DeleteUser) error

	// ChatSession model related methods.
	// CreateChatSession returns (nil, nil) when another active session won
	// the insert race; callers re-read the active session in that case.
	CreateChatSession(ctx context.Context, create *ChatSession) (*ChatSession, error)
	ListChatSessions(ctx context.Context, find *FindChatSession) ([]*ChatSession, error)
	UpdateChatSession(ctx context.Context, update *UpdateChatSession) error
	// DeleteChatSession removes the session and all its messages together;
	// messages must never outlive their session.
	DeleteChatSession(ctx context.Context, delete *DeleteChatSession) error

	// ChatMessage model related methods.
	CreateChatMessage(ctx context.Context, create *ChatMessage) (*ChatMessage, error)
	ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error)
	DeleteChatMessages(ctx context.Context, delete *DeleteChatMessage) error
}
