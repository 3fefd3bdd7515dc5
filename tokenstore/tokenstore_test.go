package tokenstore_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/tokenstore"
	"github.com/jrsteele09/go-auth-client/tokenstore/storagefakes"
	"github.com/stretchr/testify/require"
)

const (
	testAccessToken  = "access-token-1"
	testRefreshToken = "refresh-token-1"
	accessTTL        = 900 * time.Second
	refreshTTL       = 604800 * time.Second
)

func newStoreAt(t *testing.T, now time.Time) (*tokenstore.Store, *storagefakes.FakeStorage, *time.Time) {
	t.Helper()
	current := now
	storage := storagefakes.NewFakeStorage()
	store := tokenstore.New(storage, tokenstore.WithNowTime(func() time.Time { return current }))
	return store, storage, &current
}

func TestAccessValidityBuffer(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, _, now := newStoreAt(t, t0)
	store.SetTokens(testAccessToken, testRefreshToken, accessTTL, refreshTTL)

	// Valid strictly while now < expiry - buffer.
	boundary := accessTTL - tokenstore.ValidityBuffer

	*now = t0.Add(boundary - time.Second)
	require.True(t, store.IsAccessValid())

	*now = t0.Add(boundary) // exactly at the buffer edge
	require.False(t, store.IsAccessValid())

	*now = t0.Add(accessTTL - 4*time.Second) // inside the buffer window
	require.False(t, store.IsAccessValid())
	require.True(t, store.IsRefreshValid())
}

func TestLoginTimeline(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, _, now := newStoreAt(t, t0)
	store.SetTokens(testAccessToken, testRefreshToken, 900*time.Second, refreshTTL)

	*now = t0.Add(599 * time.Second)
	require.True(t, store.IsAccessValid())

	*now = t0.Add(600 * time.Second)
	require.False(t, store.IsAccessValid())
}

func TestPersistenceRoundTrip(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, storage, _ := newStoreAt(t, t0)
	store.SetTokens(testAccessToken, testRefreshToken, accessTTL, refreshTTL)

	persisted := storage.Snapshot()
	require.Equal(t, testAccessToken, persisted[tokenstore.AccessTokenKey])
	require.Equal(t, testRefreshToken, persisted[tokenstore.RefreshTokenKey])
	// Expirations persist as decimal-string epoch milliseconds.
	require.Equal(t, "1748780100000", persisted[tokenstore.AccessTokenExpirationKey])

	// Simulated process restart: a fresh store over the same storage.
	restarted := tokenstore.New(storage)
	restarted.Load()
	requireSamePair(t, store.Pair(), restarted.Pair())
}

func requireSamePair(t *testing.T, want, got tokenstore.TokenPair) {
	t.Helper()
	require.Equal(t, want.AccessToken, got.AccessToken)
	require.Equal(t, want.RefreshToken, got.RefreshToken)
	require.True(t, want.AccessExpiry.Equal(got.AccessExpiry))
	require.True(t, want.RefreshExpiry.Equal(got.RefreshExpiry))
}

func TestLoadWithoutStorage(t *testing.T) {
	store := tokenstore.New(nil)
	store.Load()
	require.Equal(t, tokenstore.TokenPair{}, store.Pair())
	require.False(t, store.IsAccessValid())
	require.False(t, store.IsRefreshValid())
}

func TestLoadMalformedExpiration(t *testing.T) {
	storage := storagefakes.NewFakeStorage()
	require.NoError(t, storage.Set(tokenstore.AccessTokenKey, testAccessToken))
	require.NoError(t, storage.Set(tokenstore.AccessTokenExpirationKey, "not-a-number"))

	store := tokenstore.New(storage)
	store.Load()

	pair := store.Pair()
	require.Equal(t, testAccessToken, pair.AccessToken)
	require.True(t, pair.AccessExpiry.IsZero())
	// Without an expiry the token is carried as non-expiring.
	require.True(t, store.IsAccessValid())
}

func TestRefreshValidityDeferredToServer(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, _, _ := newStoreAt(t, t0)

	// No refresh TTL recorded: a present refresh token counts as valid and
	// real validity is decided by the server at refresh time.
	store.SetTokens(testAccessToken, testRefreshToken, accessTTL, 0)
	require.True(t, store.IsRefreshValid())

	store.SetTokens(testAccessToken, "", accessTTL, 0)
	require.False(t, store.IsRefreshValid())
}

func TestSetAccessTokenKeepsRefreshSide(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, _, _ := newStoreAt(t, t0)
	store.SetTokens(testAccessToken, testRefreshToken, accessTTL, refreshTTL)

	store.SetAccessToken("rotated-access", 600*time.Second)

	pair := store.Pair()
	require.Equal(t, "rotated-access", pair.AccessToken)
	require.Equal(t, testRefreshToken, pair.RefreshToken)
	require.Equal(t, t0.Add(refreshTTL), pair.RefreshExpiry)
	require.Equal(t, t0.Add(600*time.Second), pair.AccessExpiry)
}

func TestClearTokensWipesStorage(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, storage, _ := newStoreAt(t, t0)
	store.SetTokens(testAccessToken, testRefreshToken, accessTTL, refreshTTL)

	store.ClearTokens()

	require.Equal(t, tokenstore.TokenPair{}, store.Pair())
	require.Empty(t, storage.Snapshot())
}

func TestStatus(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		setup      func(store *tokenstore.Store)
		at         time.Time
		wantStatus tokenstore.StatusKind
	}{
		{
			name:       "no tokens",
			setup:      func(*tokenstore.Store) {},
			at:         t0,
			wantStatus: tokenstore.StatusEmpty,
		},
		{
			name: "access valid",
			setup: func(s *tokenstore.Store) {
				s.SetTokens(testAccessToken, testRefreshToken, accessTTL, refreshTTL)
			},
			at:         t0,
			wantStatus: tokenstore.StatusValid,
		},
		{
			name: "access stale, refresh valid",
			setup: func(s *tokenstore.Store) {
				s.SetTokens(testAccessToken, testRefreshToken, accessTTL, refreshTTL)
			},
			at:         t0.Add(accessTTL),
			wantStatus: tokenstore.StatusRefreshRequired,
		},
		{
			name: "everything stale",
			setup: func(s *tokenstore.Store) {
				s.SetTokens(testAccessToken, testRefreshToken, accessTTL, refreshTTL)
			},
			at:         t0.Add(refreshTTL),
			wantStatus: tokenstore.StatusExpired,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _, now := newStoreAt(t, t0)
			tt.setup(store)
			*now = tt.at
			status := store.Status()
			require.Equal(t, tt.wantStatus, status.Status)
			if tt.wantStatus == tokenstore.StatusValid {
				require.True(t, status.AccessValid)
				require.Greater(t, status.ExpiresInMinutes, 0)
			}
		})
	}
}
