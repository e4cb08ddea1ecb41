// Package server bootstraps the HTTP server hosting the CampusFinds API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/campusfinds/campusfinds/internal/profile"
	apiv1 "github.com/campusfinds/campusfinds/server/router/api/v1"
	"github.com/campusfinds/campusfinds/store"
)

// Server owns the echo instance and the API services mounted on it.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	apiService *apiv1.APIV1Service
}

// NewServer assembles the HTTP server.
func NewServer(ctx context.Context, p *profile.Profile, st *store.Store, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
			)
			return nil
		},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	apiService := apiv1.NewAPIV1Service(p, st, logger)
	apiService.Register(e)

	return &Server{
		Profile:    p,
		Store:      st,
		echoServer: e,
		apiService: apiService,
	}, nil
}

// Start begins serving and blocks until the listener fails or the context
// is cancelled.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	if err := s.echoServer.Start(address); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "failed to start echo server")
	}
	return nil
}

// Shutdown drains in-flight requests and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	s.apiService.Close()
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", slog.String("error", err.Error()))
	}
	slog.Info("server shutdown complete")
}
