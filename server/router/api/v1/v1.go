// Package v1 exposes the chat assistant and marketplace over HTTP.
package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusfinds/campusfinds/internal/profile"
	"github.com/campusfinds/campusfinds/plugin/assistant"
	"github.com/campusfinds/campusfinds/plugin/assistant/session"
	"github.com/campusfinds/campusfinds/server/ai"
	"github.com/campusfinds/campusfinds/server/auth"
	"github.com/campusfinds/campusfinds/server/middleware"
	"github.com/campusfinds/campusfinds/store"
)

// APIV1Service wires the assistant, session manager, and store behind the
// /api/v1 routes.
type APIV1Service struct {
	Profile       *profile.Profile
	Store         *store.Store
	Authenticator *auth.Authenticator
	Sessions      *session.Manager
	Orchestrator  *assistant.Orchestrator

	logger      *slog.Logger
	rateLimiter *middleware.RateLimiter
}

// NewAPIV1Service assembles the API layer. The generative provider is only
// attached when the profile enables it; without one the assistant still
// answers search and listing questions.
func NewAPIV1Service(p *profile.Profile, st *store.Store, logger *slog.Logger) *APIV1Service {
	if logger == nil {
		logger = slog.Default()
	}

	var generator assistant.Generator
	if p.IsAIEnabled() {
		generator = ai.NewProvider(ai.ConfigFromProfile(p))
	}

	sessions := session.NewManager(st, logger)
	sessions.Configure(p.ChatWindow, p.HistoryLimit)

	return &APIV1Service{
		Profile:       p,
		Store:         st,
		Authenticator: auth.NewAuthenticator(p.JWTSecret),
		Sessions:      sessions,
		Orchestrator:  assistant.NewOrchestrator(st, st, generator, logger),
		logger:        logger,
		rateLimiter:   middleware.DefaultRateLimiter(),
	}
}

// Register mounts the API routes on the echo server.
func (s *APIV1Service) Register(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/auth/signup", s.SignUp)
	api.POST("/auth/signin", s.SignIn)

	api.GET("/listings", s.ListListings)
	api.GET("/stats", s.GetMarketplaceStats)
	api.GET("/metrics", s.GetAssistantMetrics, s.authMiddleware)

	chat := api.Group("/chat", s.authMiddleware, s.rateLimiter.Middleware())
	chat.POST("", s.Chat)
	chat.GET("/messages", s.ListChatHistory)
	chat.GET("/sessions", s.ListChatSessions)
	chat.POST("/clear", s.ClearChatSession)
	chat.DELETE("/session", s.DeleteChatSession)

	e.GET("/feed/listings.rss", s.ListingsFeed)
}

// Close releases background resources.
func (s *APIV1Service) Close() {
	s.rateLimiter.Close()
}

// authMiddleware resolves the bearer token into a user id on the request
// context.
func (s *APIV1Service) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := s.Authenticator.Authenticate(c.Request().Header.Get("Authorization"))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		c.Set("user_id", claims.UserID)
		return next(c)
	}
}

func userIDFromContext(c echo.Context) int32 {
	if uid, ok := c.Get("user_id").(int32); ok {
		return uid
	}
	return 0
}
