package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/campusfinds/campusfinds/plugin/assistant/retrieval"
	"github.com/campusfinds/campusfinds/store"
)

type listingResponse struct {
	ID            int32    `json:"id"`
	UID           string   `json:"uid"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Price         *float64 `json:"price"`
	Category      string   `json:"category"`
	Subcategory   string   `json:"subcategory"`
	Campus        string   `json:"campus"`
	ImageURLs     []string `json:"imageUrls"`
	FormattedDate string   `json:"formattedDate"`
	PostURL       string   `json:"postUrl"`
}

type statsResponse struct {
	TotalListings     int32                `json:"totalListings"`
	PopularCategories []categoryStatsEntry `json:"popularCategories"`
	Campuses          []campusStatsEntry   `json:"campuses"`
}

type categoryStatsEntry struct {
	Category string `json:"category"`
	Count    int32  `json:"count"`
}

type campusStatsEntry struct {
	Campus string `json:"campus"`
	Count  int32  `json:"count"`
}

// ListListings is the public browse endpoint backing the marketplace UI.
func (s *APIV1Service) ListListings(c echo.Context) error {
	ctx := c.Request().Context()

	find := &store.FindListing{}
	if v := c.QueryParam("q"); v != "" {
		find.Query = &v
	}
	if v := c.QueryParam("category"); v != "" {
		find.Category = &v
	}
	if v := c.QueryParam("subcategory"); v != "" {
		find.Subcategory = &v
	}
	if v := c.QueryParam("campus"); v != "" {
		find.Campus = &v
	}
	limit := retrieval.MaxResults
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		if parsed < limit {
			limit = parsed
		}
	}
	find.Limit = &limit

	listings, err := s.Store.ListListings(ctx, find)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "failed to load listings")
	}

	out := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		e := retrieval.Enhance(l)
		out = append(out, listingResponse{
			ID:            l.ID,
			UID:           l.UID,
			Title:         l.Title,
			Description:   l.Description,
			Price:         l.Price,
			Category:      l.Category,
			Subcategory:   l.Subcategory,
			Campus:        l.Campus,
			ImageURLs:     e.ImageURLs,
			FormattedDate: e.FormattedDate,
			PostURL:       e.PostURL,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// GetMarketplaceStats returns the aggregate counts shown on the landing
// page and fed into the assistant's fallback prompt.
func (s *APIV1Service) GetMarketplaceStats(c echo.Context) error {
	stats, err := s.Store.GetListingStats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "failed to load stats")
	}

	resp := statsResponse{TotalListings: stats.TotalCount}
	for _, cc := range stats.PopularCategories {
		resp.PopularCategories = append(resp.PopularCategories, categoryStatsEntry{
			Category: cc.Category,
			Count:    cc.Count,
		})
	}
	for _, cc := range stats.CampusCounts {
		resp.Campuses = append(resp.Campuses, campusStatsEntry{
			Campus: cc.Campus,
			Count:  cc.Count,
		})
	}
	return c.JSON(http.StatusOK, resp)
}
