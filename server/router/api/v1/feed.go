package v1

import (
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"

	"github.com/campusfinds/campusfinds/store"
)

// feedItemLimit caps how many listings the RSS feed carries.
const feedItemLimit = 20

// ListingsFeed serves the newest listings as RSS so students can subscribe
// to the marketplace from a feed reader.
func (s *APIV1Service) ListingsFeed(c echo.Context) error {
	ctx := c.Request().Context()

	limit := feedItemLimit
	find := &store.FindListing{Limit: &limit}
	if v := c.QueryParam("campus"); v != "" {
		find.Campus = &v
	}
	if v := c.QueryParam("category"); v != "" {
		find.Category = &v
	}

	listings, err := s.Store.ListListings(ctx, find)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "failed to load listings")
	}

	baseURL := s.Profile.InstanceURL
	feed := &feeds.Feed{
		Title:       "CampusFinds - Latest Listings",
		Link:        &feeds.Link{Href: baseURL},
		Description: "New listings from students on CampusFinds",
		Created:     time.Now(),
	}

	for _, l := range listings {
		item := &feeds.Item{
			Id:          l.UID,
			Title:       l.Title,
			Link:        &feeds.Link{Href: baseURL + "/post/" + l.UID},
			Description: l.Description,
			Created:     time.Unix(l.CreatedTs, 0),
		}
		feed.Items = append(feed.Items, item)
	}

	rss, err := feed.ToRss()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render feed")
	}
	return c.Blob(http.StatusOK, "application/rss+xml", []byte(rss))
}
