package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	a := NewAuthenticator("test-secret")

	token, err := a.GenerateAccessToken(42, "sam@stanford.edu")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := a.Authenticate("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, int32(42), claims.UserID)
	assert.Equal(t, "sam@stanford.edu", claims.Email)
}

func TestAuthenticateRejectsBadInput(t *testing.T) {
	a := NewAuthenticator("test-secret")

	_, err := a.Authenticate("")
	assert.Error(t, err)

	_, err = a.Authenticate("Bearer not-a-token")
	assert.Error(t, err)
}

func TestAuthenticateRejectsWrongSecret(t *testing.T) {
	issuer := NewAuthenticator("secret-a")
	verifier := NewAuthenticator("secret-b")

	token, err := issuer.GenerateAccessToken(1, "a@b.edu")
	require.NoError(t, err)

	_, err = verifier.Authenticate("Bearer " + token)
	assert.Error(t, err)
}
