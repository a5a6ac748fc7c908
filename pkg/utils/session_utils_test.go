package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateSessionToken(secret, "admin", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateSessionToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "tickettrack-ui", claims.Issuer)
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, err := GenerateSessionToken([]byte("test-secret"), "admin", time.Hour)
	require.NoError(t, err)

	_, err = ValidateSessionToken([]byte("other-secret"), token)
	assert.Error(t, err)
}

func TestSessionTokenExpired(t *testing.T) {
	token, err := GenerateSessionToken([]byte("test-secret"), "admin", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateSessionToken([]byte("test-secret"), token)
	assert.Error(t, err)
}

func TestSessionTokenGarbage(t *testing.T) {
	_, err := ValidateSessionToken([]byte("test-secret"), "not-a-token")
	assert.Error(t, err)
}
