package store

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/lithammer/shortuuid/v4"
)

// The migration system initializes the database schema on first run.
//
// Migration Flow:
// 1. preMigrate: Check if DB is initialized. If not, apply LATEST.sql
// 2. Migrate (demo mode): Seed database with demo data
//
// Migration Files:
// - Location: store/migration/{driver}/LATEST.sql
// - LATEST.sql: Full schema for new installations

//go:embed migration
var migrationFS embed.FS

const (
	// LatestSchemaFileName is the name of the latest schema file.
	// This file is used to initialize fresh installations with the current schema.
	LatestSchemaFileName = "LATEST.sql"

	modeDemo = "demo"
)

// Migrate initializes the database schema and, in demo mode, seeds the
// database with demo data.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.preMigrate(ctx); err != nil {
		return errors.Wrap(err, "failed to pre-migrate")
	}

	if s.profile.Mode == modeDemo {
		if err := s.seed(ctx); err != nil {
			return errors.Wrap(err, "failed to seed")
		}
	}
	return nil
}

// preMigrate applies the full schema when the database has not been
// initialized yet.
func (s *Store) preMigrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}
	if initialized {
		return nil
	}

	filePath := fmt.Sprintf("migration/%s/%s", s.profile.Driver, LatestSchemaFileName)
	bytes, err := migrationFS.ReadFile(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema file %q", filePath)
	}

	tx, err := s.driver.GetDB().Begin()
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(bytes)); err != nil {
		return errors.Wrap(err, "failed to execute latest schema")
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	slog.Info("database initialized", slog.String("driver", s.profile.Driver))
	return nil
}

// seed populates the database with a small demo marketplace so the assistant
// has something to search against out of the box.
func (s *Store) seed(ctx context.Context) error {
	normal := Normal
	count, err := s.driver.CountListings(ctx, &FindListing{RowStatus: &normal})
	if err != nil {
		return errors.Wrap(err, "failed to count listings")
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo"), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "failed to hash demo password")
	}
	seller, err := s.CreateUser(ctx, &User{
		UID:          shortuuid.New(),
		Email:        "demo@campusfinds.app",
		Name:         "Demo Seller",
		University:   "Stanford University",
		RowStatus:    Normal,
		PasswordHash: string(hash),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create demo user")
	}

	price := func(v float64) *float64 { return &v }
	listings := []*Listing{
		{
			Title:       "MacBook Air M2, barely used",
			Description: "13-inch, 16GB RAM. Includes charger and sleeve.",
			Price:       price(750),
			Category:    "For Sale",
			Subcategory: "Electronics",
			Campus:      "Stanford University",
		},
		{
			Title:       "Road bike, medium frame",
			Description: "Great campus commuter, new tires last month.",
			Price:       price(180),
			Category:    "For Sale",
			Subcategory: "Sports",
			Campus:      "Stanford University",
		},
		{
			Title:       "Summer sublet near campus",
			Description: "Private room in a 3BR apartment, June through August.",
			Price:       price(900),
			Category:    "Housing",
			Subcategory: "Sublets",
			Campus:      "Stanford University",
		},
		{
			Title:       "Free desk lamp",
			Description: "Works fine, just moving out. First come first served.",
			Category:    "Community",
			Subcategory: "Free Stuff",
			Campus:      "UC Berkeley",
		},
	}
	for _, listing := range listings {
		listing.UID = shortuuid.New()
		listing.SellerID = seller.ID
		listing.RowStatus = Normal
		if _, err := s.driver.CreateListing(ctx, listing); err != nil {
			return errors.Wrapf(err, "failed to seed listing %q", listing.Title)
		}
	}
	return nil
}
