package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minitweet/config"
)

func TestTokenRoundTrip(t *testing.T) {
	config.SetForTesting(config.AppConfig{JWTSecret: "test-secret"})

	token, err := GenerateToken(42, "alice", TokenTTL)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, TokenIssuer, claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	config.SetForTesting(config.AppConfig{JWTSecret: "first-secret"})
	token, err := GenerateToken(1, "bob", TokenTTL)
	require.NoError(t, err)

	config.SetForTesting(config.AppConfig{JWTSecret: "other-secret"})
	_, err = ParseToken(token)
	assert.Error(t, err)
}
