package session_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/gateway"
	"github.com/stretchr/testify/require"
)

func TestTokenSourceReturnsValidToken(t *testing.T) {
	f := setup(t, http.NewServeMux())
	f.store.SetTokens("a1", "r1", 900*time.Second, 604800*time.Second)

	token, err := f.controller.TokenSource(context.Background()).Token()
	require.NoError(t, err)
	require.Equal(t, "a1", token.AccessToken)
	require.Equal(t, "Bearer", token.TokenType)
	require.Equal(t, f.now.Add(900*time.Second), token.Expiry)
}

func TestTokenSourceRefreshesStaleToken(t *testing.T) {
	var refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc(gateway.RefreshPath, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		w.Write([]byte(`{"accessToken":"fresh","expiresIn":900}`))
	})
	f := setup(t, mux)
	f.store.SetTokens("stale", "r1", 900*time.Second, 604800*time.Second)
	*f.now = f.now.Add(700 * time.Second) // inside the validity buffer

	token, err := f.controller.TokenSource(context.Background()).Token()
	require.NoError(t, err)
	require.Equal(t, "fresh", token.AccessToken)
	require.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
}
