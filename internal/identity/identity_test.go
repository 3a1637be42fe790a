package identity_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/mrskaggs/forkful/backend/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims identity.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestResolveValidToken(t *testing.T) {
	provider := identity.NewJWTProvider("test-secret")
	token := signToken(t, "test-secret", identity.Claims{
		UserID:      7,
		DisplayName: "alice",
		Role:        identity.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	ident, err := provider.Resolve(token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, ident.UserID)
	assert.Equal(t, "alice", ident.DisplayName)
	assert.True(t, ident.IsAdmin())
}

func TestResolveDefaultsRole(t *testing.T) {
	provider := identity.NewJWTProvider("test-secret")
	token := signToken(t, "test-secret", identity.Claims{UserID: 7, DisplayName: "alice"})

	ident, err := provider.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, identity.RoleUser, ident.Role)
	assert.False(t, ident.IsAdmin())
}

func TestResolveRejectsBadTokens(t *testing.T) {
	provider := identity.NewJWTProvider("test-secret")

	_, err := provider.Resolve("")
	assert.ErrorIs(t, err, identity.ErrInvalidCredential)

	_, err = provider.Resolve("not.a.jwt")
	assert.ErrorIs(t, err, identity.ErrInvalidCredential)

	wrongKey := signToken(t, "other-secret", identity.Claims{UserID: 7})
	_, err = provider.Resolve(wrongKey)
	assert.ErrorIs(t, err, identity.ErrInvalidCredential)

	expired := signToken(t, "test-secret", identity.Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	_, err = provider.Resolve(expired)
	assert.ErrorIs(t, err, identity.ErrInvalidCredential)
}

func TestResolveRejectsUnsignedAlg(t *testing.T) {
	provider := identity.NewJWTProvider("test-secret")
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, identity.Claims{UserID: 7}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = provider.Resolve(token)
	assert.ErrorIs(t, err, identity.ErrInvalidCredential)
}
