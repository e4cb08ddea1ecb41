// Package auth issues and validates the access tokens that identify a user
// to the chat API.
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// AccessTokenDuration is how long an issued token stays valid.
const AccessTokenDuration = 7 * 24 * time.Hour

const issuer = "campusfinds"

// Claims carries the authenticated identity inside a token.
type Claims struct {
	UserID int32  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Authenticator signs and verifies access tokens.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator returns an authenticator using the given signing secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// GenerateAccessToken issues a signed token for the user.
func (a *Authenticator) GenerateAccessToken(userID int32, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign access token")
	}
	return signed, nil
}

// Authenticate validates a bearer token from an Authorization header and
// returns its claims.
func (a *Authenticator) Authenticate(authHeader string) (*Claims, error) {
	tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if tokenStr == "" {
		return nil, errors.New("missing access token")
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parse access token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid access token")
	}
	if claims.UserID == 0 {
		return nil, errors.New("access token carries no user")
	}
	return claims, nil
}
