package tokenstore_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/tokenstore"
	"github.com/stretchr/testify/require"
)

func TestFileStorageRoundTrip(t *testing.T) {
	dir := t.TempDir()

	storage, err := tokenstore.NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, storage.Set(tokenstore.AccessTokenKey, "abc"))
	require.NoError(t, storage.Set(tokenstore.RefreshTokenKey, "def"))
	require.NoError(t, storage.Delete(tokenstore.RefreshTokenKey))

	// Reopen from disk.
	reopened, err := tokenstore.NewFileStorage(dir)
	require.NoError(t, err)

	value, ok := reopened.Get(tokenstore.AccessTokenKey)
	require.True(t, ok)
	require.Equal(t, "abc", value)
	_, ok = reopened.Get(tokenstore.RefreshTokenKey)
	require.False(t, ok)
}

func TestFileStorageEncryptsAtRest(t *testing.T) {
	dir := t.TempDir()

	storage, err := tokenstore.NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, storage.Set(tokenstore.AccessTokenKey, "super-secret-token"))

	raw, err := os.ReadFile(filepath.Join(dir, "tokens.dat"))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "super-secret-token")
}

func TestFileStorageCorruptFileTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tokens.dat"), []byte("garbage"), 0o600))

	storage, err := tokenstore.NewFileStorage(dir)
	require.NoError(t, err)
	_, ok := storage.Get(tokenstore.AccessTokenKey)
	require.False(t, ok)

	// The store treats the corrupt file as absence of tokens.
	store := tokenstore.New(storage)
	store.Load()
	require.Equal(t, tokenstore.TokenPair{}, store.Pair())
}

func TestFileStoragePersistedViaStore(t *testing.T) {
	dir := t.TempDir()
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	storage, err := tokenstore.NewFileStorage(dir)
	require.NoError(t, err)
	store := tokenstore.New(storage, tokenstore.WithNowTime(func() time.Time { return t0 }))
	store.SetTokens("a", "r", 900*time.Second, 604800*time.Second)

	reopened, err := tokenstore.NewFileStorage(dir)
	require.NoError(t, err)
	restarted := tokenstore.New(reopened)
	restarted.Load()
	requireSamePair(t, store.Pair(), restarted.Pair())
}
