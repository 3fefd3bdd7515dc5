package tokenstore_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-client/tokenstore"
	"github.com/stretchr/testify/require"
)

func TestPeekClaims(t *testing.T) {
	expiry := time.Date(2025, 6, 1, 12, 15, 0, 0, time.UTC)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       "user-1",
		"email":     "john.doe@example.com",
		"tenant_id": "tenant-1",
		"exp":       expiry.Unix(),
	})
	signed, err := token.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	claims, ok := tokenstore.PeekClaims(signed)
	require.True(t, ok)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "john.doe@example.com", claims.Email)
	require.Equal(t, "tenant-1", claims.TenantID)
	require.Equal(t, expiry, claims.ExpiresAt.UTC())
}

func TestPeekClaimsOpaqueToken(t *testing.T) {
	_, ok := tokenstore.PeekClaims("not-a-jwt")
	require.False(t, ok)

	_, ok = tokenstore.PeekClaims("")
	require.False(t, ok)
}
