package v1

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campusfinds/campusfinds/plugin/assistant"
	chaterrors "github.com/campusfinds/campusfinds/server/internal/errors"
	"github.com/campusfinds/campusfinds/internal/observability"
	"github.com/campusfinds/campusfinds/store"
)

// maxInboundMessageLength bounds what a single chat turn may carry.
const maxInboundMessageLength = 2000

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	SessionID int32  `json:"sessionId"`
	Reply     string `json:"reply"`
}

type chatSessionResponse struct {
	ID        int32  `json:"id"`
	UID       string `json:"uid"`
	IsActive  bool   `json:"isActive"`
	CreatedTs int64  `json:"createdTs"`
	UpdatedTs int64  `json:"updatedTs"`
}

type chatMessageResponse struct {
	ID        int32  `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedTs int64  `json:"createdTs"`
}

// Chat handles one conversational turn: resolve the active session, build
// the conversation context, and dispatch through the assistant.
func (s *APIV1Service) Chat(c echo.Context) error {
	ctx := c.Request().Context()
	userID := userIDFromContext(c)

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}
	if len([]rune(message)) > maxInboundMessageLength {
		return echo.NewHTTPError(http.StatusBadRequest, "message is too long")
	}

	reqCtx := observability.NewRequestContext(s.logger, "chat", userID)
	ctx = observability.WithRequestContext(ctx, reqCtx)
	reqCtx.Debug("chat message received",
		slog.Int(observability.LogFieldMessageLen, len(message)))

	sess, err := s.Sessions.GetOrCreateSession(ctx, userID)
	if err != nil {
		return chatHTTPError(chaterrors.StoreUnavailable("chat is temporarily unavailable", err))
	}

	conv := s.Sessions.BuildContext(ctx, userID, sess.ID)
	reply := s.Orchestrator.ProcessMessage(ctx, &assistant.Request{
		UserID:    userID,
		SessionID: sess.ID,
		Message:   message,
		Conv:      conv,
	})

	reqCtx.Info("chat message answered",
		slog.Int(observability.LogFieldSessionID, int(sess.ID)),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
	return c.JSON(http.StatusOK, chatResponse{SessionID: sess.ID, Reply: reply})
}

// chatHTTPError maps a structured chat error onto an HTTP response.
func chatHTTPError(err error) *echo.HTTPError {
	code := chaterrors.GetCodeFromError(err, chaterrors.ErrCodeStoreUnavailable)
	status := http.StatusServiceUnavailable
	switch code {
	case chaterrors.ErrCodeUnauthorized:
		status = http.StatusUnauthorized
	case chaterrors.ErrCodeRateLimitExceeded:
		status = http.StatusTooManyRequests
	case chaterrors.ErrCodeInvalidArgument:
		status = http.StatusBadRequest
	case chaterrors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}
	msg := "chat is temporarily unavailable"
	if ce, ok := err.(*chaterrors.ChatError); ok && ce.Message != "" {
		msg = ce.Message
	}
	return echo.NewHTTPError(status, msg)
}

// ListChatHistory returns the persisted message log for the active session,
// oldest first.
func (s *APIV1Service) ListChatHistory(c echo.Context) error {
	ctx := c.Request().Context()
	userID := userIDFromContext(c)

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = v
	}

	sess, err := s.Sessions.GetOrCreateSession(ctx, userID)
	if err != nil {
		return chatHTTPError(chaterrors.StoreUnavailable("chat is temporarily unavailable", err))
	}

	msgs, err := s.Sessions.History(ctx, sess.ID, limit)
	if err != nil {
		return chatHTTPError(chaterrors.StoreUnavailable("failed to load chat history", err))
	}

	out := make([]chatMessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, chatMessageResponse{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedTs: m.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// ListChatSessions returns the user's sessions, newest first, including
// archived ones.
func (s *APIV1Service) ListChatSessions(c echo.Context) error {
	ctx := c.Request().Context()
	userID := userIDFromContext(c)

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = v
	}

	sessions, err := s.Sessions.ListSessions(ctx, userID, limit)
	if err != nil {
		return chatHTTPError(chaterrors.StoreUnavailable("failed to load sessions", err))
	}

	out := make([]chatSessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, chatSessionResponse{
			ID:        sess.ID,
			UID:       sess.UID,
			IsActive:  sess.IsActive,
			CreatedTs: sess.CreatedTs,
			UpdatedTs: sess.UpdatedTs,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// ClearChatSession archives the active session; the next message starts a
// fresh conversation. Messages stay persisted.
func (s *APIV1Service) ClearChatSession(c echo.Context) error {
	ctx := c.Request().Context()
	userID := userIDFromContext(c)

	sess, err := s.activeSession(c, userID)
	if err != nil {
		return err
	}
	if sess == nil {
		return c.NoContent(http.StatusNoContent)
	}

	if err := s.Sessions.ClearSession(ctx, sess.ID); err != nil {
		return chatHTTPError(chaterrors.StoreUnavailable("failed to clear session", err))
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteChatSession removes the active session and its entire message log.
func (s *APIV1Service) DeleteChatSession(c echo.Context) error {
	ctx := c.Request().Context()
	userID := userIDFromContext(c)

	sess, err := s.activeSession(c, userID)
	if err != nil {
		return err
	}
	if sess == nil {
		return c.NoContent(http.StatusNoContent)
	}

	if err := s.Sessions.DeleteSession(ctx, sess.ID); err != nil {
		return chatHTTPError(chaterrors.StoreUnavailable("failed to delete session", err))
	}
	return c.NoContent(http.StatusNoContent)
}

// activeSession looks up the user's active session without creating one.
func (s *APIV1Service) activeSession(c echo.Context, userID int32) (*store.ChatSession, error) {
	active := true
	sessions, err := s.Store.ListChatSessions(c.Request().Context(), &store.FindChatSession{
		UserID:   &userID,
		IsActive: &active,
	})
	if err != nil {
		return nil, chatHTTPError(chaterrors.StoreUnavailable("chat is temporarily unavailable", err))
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return sessions[0], nil
}
