// Package format renders listings and result sets into chat replies. The
// truncation and pluralization rules here are contracts the conversation
// layer depends on, not styling.
package format

import (
	"fmt"
	"strings"

	"github.com/campusfinds/campusfinds/plugin/assistant/retrieval"
)

const (
	// MaxShownListings is how many listings a reply renders in full.
	MaxShownListings = 5

	// DescriptionLimit bounds the description excerpt per listing.
	DescriptionLimit = 150

	listingSeparator = "\n\n---\n\n"
)

// FormatListing renders one listing with a fixed template: title, price,
// campus, date, photo note, a bounded description excerpt, and a detail
// link.
func FormatListing(l *retrieval.EnhancedListing) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**%s**\n", l.Title)
	fmt.Fprintf(&b, "Price: %s\n", formatPrice(l.Price))
	if l.Campus != "" {
		fmt.Fprintf(&b, "Campus: %s\n", l.Campus)
	}
	fmt.Fprintf(&b, "Posted: %s\n", l.FormattedDate)
	if n := len(l.ImageURLs); n > 0 {
		fmt.Fprintf(&b, "%d %s attached\n", n, pluralize(n, "photo", "photos"))
	}
	if desc := strings.TrimSpace(l.Description); desc != "" {
		fmt.Fprintf(&b, "%s\n", truncate(desc, DescriptionLimit))
	}
	fmt.Fprintf(&b, "View Full Details -> %s", l.PostURL)

	return b.String()
}

// FormatResultSet renders up to MaxShownListings listings, an overflow note
// when more matched, and a follow-up prompt. scopeLabel names where the
// search looked ("at Stanford University", "in the entire marketplace").
func FormatResultSet(listings []*retrieval.EnhancedListing, scopeLabel string, totalCount int) string {
	if len(listings) == 0 {
		return noResultsReply(scopeLabel)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d %s %s:\n\n",
		totalCount, pluralize(totalCount, "item", "items"), scopeLabel)

	shown := listings
	if len(shown) > MaxShownListings {
		shown = shown[:MaxShownListings]
	}
	parts := make([]string, 0, len(shown))
	for _, l := range shown {
		parts = append(parts, FormatListing(l))
	}
	b.WriteString(strings.Join(parts, listingSeparator))

	if totalCount > MaxShownListings {
		more := totalCount - MaxShownListings
		fmt.Fprintf(&b, "\n\n...and %d more %s.", more, pluralize(more, "match", "matches"))
	}

	b.WriteString("\n\nWant me to narrow this down by price, campus, or category?")
	return b.String()
}

// FormatSellerListings renders the user's own posts, or a nudge to create
// the first one.
func FormatSellerListings(listings []*retrieval.EnhancedListing) string {
	if len(listings) == 0 {
		return "You don't have any posts yet. Creating one only takes a minute - " +
			"tap \"New Post\", add a photo and a price, and your listing goes " +
			"live to the whole campus."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d active %s:\n\n",
		len(listings), pluralize(len(listings), "post", "posts"))

	parts := make([]string, 0, len(listings))
	for _, l := range listings {
		parts = append(parts, FormatListing(l))
	}
	b.WriteString(strings.Join(parts, listingSeparator))
	return b.String()
}

func noResultsReply(scopeLabel string) string {
	return fmt.Sprintf("I couldn't find anything %s right now. Here's what you can do:\n"+
		"1. Broaden the search - try fewer filters or search all campuses.\n"+
		"2. Create a post asking for what you need, so sellers can come to you.\n"+
		"3. Set an alert and I'll let you know when something matching shows up.",
		scopeLabel)
}

func formatPrice(price *float64) string {
	if price == nil || *price == 0 {
		return "Free"
	}
	return fmt.Sprintf("$%.2f", *price)
}

// truncate bounds s to limit runes, appending an ellipsis when it was cut.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
