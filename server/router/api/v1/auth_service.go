package v1

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusfinds/campusfinds/store"
)

type signUpRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	University string `json:"university"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID         int32  `json:"id"`
	UID        string `json:"uid"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	University string `json:"university"`
}

// SignUp creates an account and returns an access token.
func (s *APIV1Service) SignUp(c echo.Context) error {
	ctx := c.Request().Context()

	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return echo.NewHTTPError(http.StatusBadRequest, "a valid email is required")
	}
	if len(req.Password) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "password must be at least 6 characters")
	}

	existing, err := s.Store.ListUsers(ctx, &store.FindUser{Email: &req.Email})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to check account")
	}
	if len(existing) > 0 {
		return echo.NewHTTPError(http.StatusConflict, "an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create account")
	}

	user, err := s.Store.CreateUser(ctx, &store.User{
		UID:          shortuuid.New(),
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		University:   strings.TrimSpace(req.University),
		PasswordHash: string(hash),
		RowStatus:    store.Normal,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create user", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create account")
	}

	return s.respondWithToken(c, user)
}

// SignIn verifies credentials and returns an access token.
func (s *APIV1Service) SignIn(c echo.Context) error {
	ctx := c.Request().Context()

	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	users, err := s.Store.ListUsers(ctx, &store.FindUser{Email: &email})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to look up account")
	}
	if len(users) == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	user := users[0]

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	return s.respondWithToken(c, user)
}

func (s *APIV1Service) respondWithToken(c echo.Context, user *store.User) error {
	token, err := s.Authenticator.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}
	return c.JSON(http.StatusOK, authResponse{
		Token: token,
		User: userResponse{
			ID:         user.ID,
			UID:        user.UID,
			Email:      user.Email,
			Name:       user.Name,
			University: user.University,
		},
	})
}
