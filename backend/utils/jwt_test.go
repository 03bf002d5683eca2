package utils

import (
	"testing"

	"dailytracker/backend/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret"}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	cfg := testConfig()

	token, err := GenerateSessionToken(42, cfg)
	require.NoError(t, err)

	userID, err := ParseSessionToken(token, cfg)
	require.NoError(t, err)
	assert.EqualValues(t, 42, userID)
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, err := GenerateSessionToken(42, testConfig())
	require.NoError(t, err)

	_, err = ParseSessionToken(token, &config.Config{JWTSecret: "other-secret"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetTokenIsNotASessionToken(t *testing.T) {
	cfg := testConfig()

	reset, err := GeneratePasswordResetToken("alice@example.com", cfg)
	require.NoError(t, err)

	// A reset token must never authenticate a session.
	_, err = ParseSessionToken(reset, cfg)
	assert.ErrorIs(t, err, ErrInvalidToken)

	email, err := VerifyPasswordResetToken(reset, cfg)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)

	// And a session token must never reset a password.
	session, err := GenerateSessionToken(42, cfg)
	require.NoError(t, err)
	_, err = VerifyPasswordResetToken(session, cfg)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
