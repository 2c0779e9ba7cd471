package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propertydesk/property-broker/constants"
	"github.com/propertydesk/property-broker/internal/common"
)

func testTokenManager() *TokenManager {
	return NewTokenManager(common.AuthConfig{
		JWTSecret:        "access-secret",
		JWTRefreshSecret: "refresh-secret",
		TokenTTL:         time.Hour,
		RefreshTTL:       24 * time.Hour,
	})
}

func TestTokenRoundTrip(t *testing.T) {
	m := testTokenManager()

	tok, err := m.Generate("user-1", "broker@example.com", constants.RoleBroker)
	require.NoError(t, err)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "broker@example.com", claims.Email)
	assert.Equal(t, constants.RoleBroker, claims.Role)
}

func TestRefreshTokenNotValidAsAccessToken(t *testing.T) {
	m := testTokenManager()

	refresh, err := m.GenerateRefresh("user-1", "broker@example.com", constants.RoleBroker)
	require.NoError(t, err)

	_, err = m.Verify(refresh)
	assert.Error(t, err)

	claims, err := m.VerifyRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := testTokenManager()
	_, err := m.Verify("not-a-token")
	assert.Error(t, err)
}

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong-pass"))
}
