package format

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusfinds/campusfinds/plugin/assistant/retrieval"
	"github.com/campusfinds/campusfinds/store"
)

func makeListing(id int32, title string, price *float64) *retrieval.EnhancedListing {
	return &retrieval.EnhancedListing{
		Listing: &store.Listing{
			ID:          id,
			Title:       title,
			Price:       price,
			Campus:      "Stanford University",
			Description: "Lightly used, pickup near campus.",
		},
		FormattedDate: "Mar 14, 2026",
		PostURL:       fmt.Sprintf("/post/%d", id),
	}
}

func TestFormatListing(t *testing.T) {
	price := 120.0
	l := makeListing(42, "Road bike", &price)
	l.ImageURLs = []string{"/o/photo/a", "/o/photo/b"}

	out := FormatListing(l)

	assert.Contains(t, out, "**Road bike**")
	assert.Contains(t, out, "Price: $120.00")
	assert.Contains(t, out, "Campus: Stanford University")
	assert.Contains(t, out, "Posted: Mar 14, 2026")
	assert.Contains(t, out, "2 photos attached")
	assert.Contains(t, out, "View Full Details -> /post/42")
}

func TestFormatListingFreeWhenNoPrice(t *testing.T) {
	out := FormatListing(makeListing(7, "Desk lamp", nil))
	assert.Contains(t, out, "Price: Free")
}

func TestFormatListingTruncatesDescription(t *testing.T) {
	l := makeListing(1, "Textbook bundle", nil)
	l.Description = strings.Repeat("x", 200)

	out := FormatListing(l)

	assert.Contains(t, out, strings.Repeat("x", DescriptionLimit)+"...")
	assert.NotContains(t, out, strings.Repeat("x", DescriptionLimit+1))
}

func TestFormatResultSetEmpty(t *testing.T) {
	out := FormatResultSet(nil, "in the entire marketplace", 0)

	assert.Contains(t, out, "couldn't find anything in the entire marketplace")
	assert.Contains(t, out, "Broaden the search")
	assert.Contains(t, out, "Create a post")
	assert.Contains(t, out, "Set an alert")
}

func TestFormatResultSetSingular(t *testing.T) {
	listings := []*retrieval.EnhancedListing{makeListing(1, "Mini fridge", nil)}

	out := FormatResultSet(listings, "at Stanford University", 1)

	assert.Contains(t, out, "I found 1 item at Stanford University")
	assert.NotContains(t, out, "1 items")
	assert.NotContains(t, out, "more match")
}

func TestFormatResultSetOverflow(t *testing.T) {
	var listings []*retrieval.EnhancedListing
	for i := int32(1); i <= 7; i++ {
		listings = append(listings, makeListing(i, fmt.Sprintf("Item %d", i), nil))
	}

	out := FormatResultSet(listings, "in the entire marketplace", 7)

	assert.Contains(t, out, "I found 7 items")
	assert.Contains(t, out, "Item 5")
	assert.NotContains(t, out, "Item 6", "only five listings render in full")
	assert.Contains(t, out, "...and 2 more matches.")
}

func TestFormatSellerListingsEmptyNudge(t *testing.T) {
	out := FormatSellerListings(nil)

	assert.Contains(t, out, "don't have any posts yet")
	assert.Contains(t, out, "New Post")
}

func TestFormatSellerListings(t *testing.T) {
	listings := []*retrieval.EnhancedListing{
		makeListing(1, "Couch", nil),
		makeListing(2, "Monitor", nil),
	}

	out := FormatSellerListings(listings)

	assert.Contains(t, out, "You have 2 active posts")
	assert.Contains(t, out, "**Couch**")
	assert.Contains(t, out, "**Monitor**")
}
