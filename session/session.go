package session

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-client/gateway"
	"github.com/jrsteele09/go-auth-client/tokenstore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Auth API endpoints consumed by the controller.
const (
	LoginPath   = "/api/auth/login"
	LogoutPath  = "/api/auth/logout"
	ProfilePath = "/api/auth/me"
)

// defaultRefreshTTL applies when the server omits refreshExpiresIn from a
// login response.
const defaultRefreshTTL = 7 * 24 * time.Hour

// User is the authenticated identity, including its tenant and the
// permission strings evaluated by HasPermission.
type User struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	TenantID    string   `json:"tenantId"`
	Permissions []string `json:"permissions"`
}

// Credentials are the login form inputs.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	TenantID string `json:"tenantId"`
}

// BypassConfig reports whether permission checks are short-circuited.
// Implementations must only honour the bypass outside production.
type BypassConfig interface {
	GetPermissionBypass() bool
}

type loginResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	ExpiresIn        int64  `json:"expiresIn"`
	RefreshExpiresIn int64  `json:"refreshExpiresIn,omitempty"`
	User             *User  `json:"user,omitempty"`
}

// Controller orchestrates login, logout and profile loading, and exposes the
// derived authentication and permission state. It exclusively owns the
// session (user + error); token state lives in the token store.
type Controller struct {
	store     *tokenstore.Store
	api       *gateway.Client
	navigator gateway.Navigator
	bypass    BypassConfig
	log       zerolog.Logger

	mu               sync.Mutex
	user             *User
	err              error
	profileAttempted bool
}

// Option defines a function type to modify the Controller instance.
type Option func(*Controller)

// WithNavigator sets the navigation service invoked on logout.
func WithNavigator(navigator gateway.Navigator) Option {
	return func(c *Controller) { c.navigator = navigator }
}

// WithBypassConfig sets the permission-bypass configuration.
func WithBypassConfig(bypass BypassConfig) Option {
	return func(c *Controller) { c.bypass = bypass }
}

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// New creates a session controller.
func New(store *tokenstore.Store, api *gateway.Client, options ...Option) (*Controller, error) {
	if store == nil {
		return nil, errors.New("[session.New] token store is required")
	}
	if api == nil {
		return nil, errors.New("[session.New] gateway client is required")
	}
	c := &Controller{
		store: store,
		api:   api,
		log:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Login authenticates against the auth API and stores the returned token
// pair. The returned error is normalized; the caller decides how to display
// it. The user is set only when the login response supplies one.
func (c *Controller) Login(ctx context.Context, credentials Credentials) error {
	var resp loginResponse
	if err := c.api.PostJSON(ctx, LoginPath, credentials, &resp); err != nil {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		return err
	}

	refreshTTL := time.Duration(resp.RefreshExpiresIn) * time.Second
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	c.store.SetTokens(resp.AccessToken, resp.RefreshToken, time.Duration(resp.ExpiresIn)*time.Second, refreshTTL)

	c.mu.Lock()
	c.err = nil
	if resp.User != nil {
		c.user = resp.User
	}
	c.mu.Unlock()

	if claims, ok := tokenstore.PeekClaims(resp.AccessToken); ok {
		c.log.Info().Str("subject", claims.Subject).Str("tenant", claims.TenantID).Msg("logged in")
	} else {
		c.log.Info().Msg("logged in")
	}
	return nil
}

// Logout makes a best-effort call to the logout endpoint, then
// unconditionally clears local token and session state and redirects to
// login. Endpoint failures are logged, never surfaced.
func (c *Controller) Logout(ctx context.Context) {
	if err := c.api.PostJSON(ctx, LogoutPath, nil, nil); err != nil {
		c.log.Warn().Err(err).Msg("logout endpoint call failed")
	}

	c.store.ClearTokens()
	c.mu.Lock()
	c.user = nil
	c.err = nil
	c.profileAttempted = false
	c.mu.Unlock()

	if c.navigator != nil {
		c.navigator.RedirectToLogin("")
	}
}

// LoadProfile fetches the current user, including its permission list. On an
// UNAUTHORIZED failure the tokens are cleared, forcing a re-login. The error
// is returned so the caller can distinguish recoverable failures (e.g.
// NETWORK_ERROR) from terminal ones.
func (c *Controller) LoadProfile(ctx context.Context) error {
	c.mu.Lock()
	c.profileAttempted = true
	c.mu.Unlock()

	var user User
	if err := c.api.GetJSON(ctx, ProfilePath, &user); err != nil {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		if errors.Is(err, &gateway.APIError{Code: gateway.Unauthorized}) {
			c.log.Warn().Msg("profile load unauthorized, clearing tokens")
			c.store.ClearTokens()
		}
		return err
	}

	c.mu.Lock()
	c.user = &user
	c.err = nil
	c.mu.Unlock()
	c.log.Debug().Str("user", user.ID).Int("permissions", len(user.Permissions)).Msg("profile loaded")
	return nil
}

// User returns a copy of the current user, or nil when not logged in. The
// controller keeps sole ownership of the session user, so mutating the copy
// has no effect on later reads.
func (c *Controller) User() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	user := *c.user
	user.Permissions = append([]string(nil), c.user.Permissions...)
	return &user
}

// Error returns the last recorded session error, or nil.
func (c *Controller) Error() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// ProfileAttempted reports whether a profile load has been attempted this
// session.
func (c *Controller) ProfileAttempted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profileAttempted
}

// IsAuthenticated reports whether at least one token is currently valid and
// a user is set.
func (c *Controller) IsAuthenticated() bool {
	c.mu.Lock()
	user := c.user
	c.mu.Unlock()
	if user == nil {
		return false
	}
	return c.store.IsAccessValid() || c.store.IsRefreshValid()
}

// TokenStatus returns the token validity snapshot for the application
// surface.
func (c *Controller) TokenStatus() tokenstore.TokenStatus {
	return c.store.Status()
}
