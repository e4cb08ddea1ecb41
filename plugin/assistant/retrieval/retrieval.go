// Package retrieval bridges search intents to the listing store. Retrieval
// is advisory: a store failure degrades to an empty result set, never to an
// error the conversation surfaces.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/campusfinds/campusfinds/plugin/assistant/timeout"
	"github.com/campusfinds/campusfinds/store"
)

// MaxResults caps how many listings a single search returns.
const MaxResults = 20

// dateLayout keeps formatted dates stable regardless of host locale.
const dateLayout = "Jan 2, 2006"

// ListingStore is the slice of the store the gateway needs.
type ListingStore interface {
	ListListings(ctx context.Context, find *store.FindListing) ([]*store.Listing, error)
}

// Filter narrows a search beyond the free-text query.
type Filter struct {
	Category    string
	Subcategory string
	Campus      string
	MinPrice    *float64
	MaxPrice    *float64
}

// EnhancedListing is a listing decorated with the presentation fields the
// formatter needs.
type EnhancedListing struct {
	*store.Listing

	ImageURLs     []string
	FormattedDate string
	PostURL       string
}

// Gateway executes listing searches against the store.
type Gateway struct {
	store  ListingStore
	logger *slog.Logger
}

// NewGateway returns a gateway backed by the given listing store.
func NewGateway(s ListingStore, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{store: s, logger: logger}
}

// Search runs a listing search. The query text-matches across title,
// description, category, subcategory, and campus; filter fields apply as
// exact or range constraints. An explicit filter campus always wins; absent
// one, searchAllCampuses=false narrows to the user's university. Results
// are newest first, capped at MaxResults.
func (g *Gateway) Search(ctx context.Context, query, userUniversity string, filter Filter, searchAllCampuses bool) []*EnhancedListing {
	// When the query just restates the subcategory filter, the text match
	// would double-constrain on the same string.
	if filter.Category != "" && filter.Subcategory != "" && strings.EqualFold(query, filter.Subcategory) {
		query = ""
	}

	find := &store.FindListing{Limit: intPtr(MaxResults)}
	if query != "" {
		find.Query = &query
	}
	if filter.Category != "" {
		find.Category = &filter.Category
	}
	if filter.Subcategory != "" {
		find.Subcategory = &filter.Subcategory
	}
	switch {
	case filter.Campus != "":
		find.Campus = &filter.Campus
	case !searchAllCampuses && userUniversity != "":
		find.Campus = &userUniversity
	}
	if filter.MinPrice != nil {
		find.MinPrice = filter.MinPrice
	}
	if filter.MaxPrice != nil {
		find.MaxPrice = filter.MaxPrice
	}

	ctx, cancel := context.WithTimeout(ctx, timeout.StoreQueryTimeout)
	defer cancel()

	listings, err := g.store.ListListings(ctx, find)
	if err != nil {
		g.logger.WarnContext(ctx, "listing search failed, degrading to empty results",
			slog.String("query", query),
			slog.String("error", err.Error()))
		return nil
	}

	enhanced := make([]*EnhancedListing, 0, len(listings))
	for _, l := range listings {
		enhanced = append(enhanced, Enhance(l))
	}
	return enhanced
}

// Enhance attaches presentation fields to a listing. It performs no I/O.
func Enhance(l *store.Listing) *EnhancedListing {
	return &EnhancedListing{
		Listing:       l,
		ImageURLs:     imageURLs(l.Photos),
		FormattedDate: time.Unix(l.CreatedTs, 0).UTC().Format(dateLayout),
		PostURL:       fmt.Sprintf("/post/%d", l.ID),
	}
}

// imageURLs resolves photo storage keys to servable URLs. Keys that are
// already absolute URLs pass through untouched.
func imageURLs(photos []string) []string {
	if len(photos) == 0 {
		return nil
	}
	urls := make([]string, 0, len(photos))
	for _, p := range photos {
		if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
			urls = append(urls, p)
			continue
		}
		urls = append(urls, "/o/photo/"+p)
	}
	return urls
}

func intPtr(v int) *int {
	return &v
}
