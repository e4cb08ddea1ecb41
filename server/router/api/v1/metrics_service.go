package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusfinds/campusfinds/internal/observability"
)

// GetAssistantMetrics exposes the conversation-engine counters: totals and
// per-handler answered/error counts with average latency.
func (s *APIV1Service) GetAssistantMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, observability.GlobalMetrics().GetSnapshot())
}
