package retrieval

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusfinds/campusfinds/store"
)

type stubListingStore struct {
	lastFind *store.FindListing
	listings []*store.Listing
	err      error
}

func (s *stubListingStore) ListListings(_ context.Context, find *store.FindListing) ([]*store.Listing, error) {
	s.lastFind = find
	return s.listings, s.err
}

func TestSearchBuildsFind(t *testing.T) {
	stub := &stubListingStore{}
	g := NewGateway(stub, nil)

	g.Search(context.Background(), "bike", "Stanford University", Filter{Category: "For Sale"}, true)

	require.NotNil(t, stub.lastFind)
	require.NotNil(t, stub.lastFind.Query)
	assert.Equal(t, "bike", *stub.lastFind.Query)
	require.NotNil(t, stub.lastFind.Category)
	assert.Equal(t, "For Sale", *stub.lastFind.Category)
	assert.Nil(t, stub.lastFind.Campus, "all-campus search carries no campus constraint")
	require.NotNil(t, stub.lastFind.Limit)
	assert.Equal(t, MaxResults, *stub.lastFind.Limit)
}

func TestSearchHomeCampusDefault(t *testing.T) {
	stub := &stubListingStore{}
	g := NewGateway(stub, nil)

	g.Search(context.Background(), "desk", "UC Berkeley", Filter{}, false)

	require.NotNil(t, stub.lastFind.Campus)
	assert.Equal(t, "UC Berkeley", *stub.lastFind.Campus)
}

func TestSearchExplicitCampusWins(t *testing.T) {
	stub := &stubListingStore{}
	g := NewGateway(stub, nil)

	g.Search(context.Background(), "desk", "UC Berkeley", Filter{Campus: "Stanford University"}, false)

	require.NotNil(t, stub.lastFind.Campus)
	assert.Equal(t, "Stanford University", *stub.lastFind.Campus)
}

func TestSearchQueryEqualsSubcategoryDropsQuery(t *testing.T) {
	stub := &stubListingStore{}
	g := NewGateway(stub, nil)

	g.Search(context.Background(), "electronics", "", Filter{Category: "For Sale", Subcategory: "Electronics"}, true)

	assert.Nil(t, stub.lastFind.Query, "query restating the subcategory must not double-constrain")
	require.NotNil(t, stub.lastFind.Subcategory)
	assert.Equal(t, "Electronics", *stub.lastFind.Subcategory)
}

func TestSearchStoreErrorDegradesToEmpty(t *testing.T) {
	stub := &stubListingStore{err: errors.New("connection refused")}
	g := NewGateway(stub, nil)

	results := g.Search(context.Background(), "bike", "", Filter{}, true)

	assert.Empty(t, results)
}

func TestEnhance(t *testing.T) {
	created := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	price := 120.0
	l := &store.Listing{
		ID:        42,
		Title:     "Road bike",
		Price:     &price,
		CreatedTs: created.Unix(),
		Photos:    []string{"abc123", "https://cdn.example.com/bike.jpg"},
	}

	e := Enhance(l)

	assert.Equal(t, "/post/42", e.PostURL)
	assert.Equal(t, "Mar 14, 2026", e.FormattedDate)
	assert.Equal(t, []string{"/o/photo/abc123", "https://cdn.example.com/bike.jpg"}, e.ImageURLs)
}
