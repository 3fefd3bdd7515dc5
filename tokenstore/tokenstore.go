package tokenstore

import (
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ValidityBuffer is the safety margin applied when judging token validity.
// A token is treated as expired this long before its actual expiry so that a
// refresh attempt has headroom before the server starts rejecting it.
const ValidityBuffer = 5 * time.Minute

// Persisted storage keys. The expiration values are stored as decimal-string
// epoch milliseconds for interop with the other clients of the same backend.
const (
	AccessTokenKey            = "accessToken"
	RefreshTokenKey           = "refreshToken"
	AccessTokenExpirationKey  = "accessTokenExpiration"
	RefreshTokenExpirationKey = "refreshTokenExpiration"
)

// TokenPair holds the access/refresh token pair and their absolute expiries.
// A zero expiry means no TTL was supplied at issuance: the token is carried
// without an expiry and treated as non-expiring until explicitly cleared.
type TokenPair struct {
	AccessToken   string
	RefreshToken  string
	AccessExpiry  time.Time
	RefreshExpiry time.Time
}

// StatusKind summarises the overall token state.
type StatusKind string

const (
	StatusValid           StatusKind = "valid"
	StatusRefreshRequired StatusKind = "refresh_required"
	StatusExpired         StatusKind = "expired"
	StatusEmpty           StatusKind = "empty"
)

// TokenStatus is a point-in-time snapshot of token validity, exposed to the
// rest of the application.
type TokenStatus struct {
	AccessValid      bool
	RefreshValid     bool
	Status           StatusKind
	ExpiresInMinutes int
}

// Store is the single source of truth for the token pair. It is the only
// writer of token state; every other component reads it through accessors.
// All methods are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	pair    TokenPair
	storage Storage
	nowTime func() time.Time
	log     zerolog.Logger
}

// Option modifies a Store instance.
type Option func(*Store)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// New creates a Store backed by the given storage. A nil storage is legal:
// the store then works purely in memory, supporting contexts where no
// durable storage is available.
func New(storage Storage, options ...Option) *Store {
	s := &Store{
		storage: storage,
		nowTime: time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// SetTokens computes absolute expiries from now, replaces the token pair
// atomically and persists it. A non-positive TTL carries the token without
// an expiry.
func (s *Store) SetTokens(access, refresh string, accessTTL, refreshTTL time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowTime()
	s.pair = TokenPair{
		AccessToken:   access,
		RefreshToken:  refresh,
		AccessExpiry:  expiryFromTTL(now, accessTTL),
		RefreshExpiry: expiryFromTTL(now, refreshTTL),
	}
	s.persistLocked()
}

// SetAccessToken updates only the access side of the pair, used after a
// refresh that does not rotate the refresh token.
func (s *Store) SetAccessToken(access string, accessTTL time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair.AccessToken = access
	s.pair.AccessExpiry = expiryFromTTL(s.nowTime(), accessTTL)
	s.persistLocked()
}

// ClearTokens wipes the in-memory pair and the persisted storage.
func (s *Store) ClearTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair = TokenPair{}
	if s.storage == nil {
		return
	}
	for _, key := range []string{AccessTokenKey, RefreshTokenKey, AccessTokenExpirationKey, RefreshTokenExpirationKey} {
		if err := s.storage.Delete(key); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("token storage delete failed")
		}
	}
}

// AccessToken returns the current access token, which may be empty.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair.AccessToken
}

// RefreshToken returns the current refresh token, which may be empty.
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair.RefreshToken
}

// Pair returns a copy of the current token pair.
func (s *Store) Pair() TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair
}

// IsAccessValid reports whether the access token can still be attached to
// outgoing requests, applying the validity buffer.
func (s *Store) IsAccessValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validLocked(s.pair.AccessToken, s.pair.AccessExpiry)
}

// IsRefreshValid reports whether a refresh attempt is worth making. When no
// refresh expiry was recorded, a present refresh token is considered valid
// and actual validity is deferred to the server at refresh time.
func (s *Store) IsRefreshValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validLocked(s.pair.RefreshToken, s.pair.RefreshExpiry)
}

// Status returns a snapshot of token validity for the application surface.
func (s *Store) Status() TokenStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := TokenStatus{
		AccessValid:  s.validLocked(s.pair.AccessToken, s.pair.AccessExpiry),
		RefreshValid: s.validLocked(s.pair.RefreshToken, s.pair.RefreshExpiry),
	}
	switch {
	case status.AccessValid:
		status.Status = StatusValid
	case status.RefreshValid:
		status.Status = StatusRefreshRequired
	case s.pair.AccessToken != "" || s.pair.RefreshToken != "":
		status.Status = StatusExpired
	default:
		status.Status = StatusEmpty
	}
	if status.AccessValid && !s.pair.AccessExpiry.IsZero() {
		status.ExpiresInMinutes = int(s.pair.AccessExpiry.Sub(s.nowTime()).Minutes())
	}
	return status
}

// Load reconstructs the token pair from persisted storage, typically on
// process start. Malformed persisted data is treated as absence of tokens;
// Load never fails.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair = TokenPair{}
	if s.storage == nil {
		return
	}
	access, _ := s.storage.Get(AccessTokenKey)
	refresh, _ := s.storage.Get(RefreshTokenKey)
	s.pair = TokenPair{
		AccessToken:   access,
		RefreshToken:  refresh,
		AccessExpiry:  s.loadExpiry(AccessTokenExpirationKey),
		RefreshExpiry: s.loadExpiry(RefreshTokenExpirationKey),
	}
}

func (s *Store) loadExpiry(key string) time.Time {
	raw, ok := s.storage.Get(key)
	if !ok || raw == "" {
		return time.Time{}
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || millis <= 0 {
		s.log.Debug().Str("key", key).Str("value", raw).Msg("discarding malformed persisted expiration")
		return time.Time{}
	}
	return time.UnixMilli(millis)
}

func (s *Store) validLocked(token string, expiry time.Time) bool {
	if token == "" {
		return false
	}
	if expiry.IsZero() {
		return true
	}
	return s.nowTime().Before(expiry.Add(-ValidityBuffer))
}

func (s *Store) persistLocked() {
	if s.storage == nil {
		return
	}
	entries := map[string]string{
		AccessTokenKey:            s.pair.AccessToken,
		RefreshTokenKey:           s.pair.RefreshToken,
		AccessTokenExpirationKey:  formatExpiry(s.pair.AccessExpiry),
		RefreshTokenExpirationKey: formatExpiry(s.pair.RefreshExpiry),
	}
	for key, value := range entries {
		var err error
		if value == "" {
			err = s.storage.Delete(key)
		} else {
			err = s.storage.Set(key, value)
		}
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("token storage write failed")
		}
	}
}

func expiryFromTTL(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

func formatExpiry(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}
