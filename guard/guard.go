package guard

import (
	"context"
	"strings"
	"sync"

	"github.com/jrsteele09/go-auth-client/gateway"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/tokenstore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// alertThreshold is how many consecutive same-kind revalidation failures are
// tolerated silently before a visible alert is raised. Damps alert storms on
// flaky connectivity.
const alertThreshold = 2

// Navigator redirects the user agent to the login flow, carrying the path to
// return to afterwards.
type Navigator interface {
	RedirectToLogin(returnPath string)
}

// Alerter is the blocking-error/warning presentation surface.
type Alerter interface {
	ShowBlockingError(title, message string, onRetry func())
	ShowWarning(message string)
}

// Renderer receives the guard's rendering decisions. Loading states show a
// placeholder, Revalidating keeps the content mounted under a transient
// overlay, Error shows a full error view with manual retry.
type Renderer interface {
	RenderLoading()
	RenderDenied()
	RenderContent()
	RenderRevalidating()
	RenderError(err error, retry func())
}

// Config is the static configuration the guard needs.
type Config interface {
	GetGuardBypass() bool
	GetDefaultPage() string
}

// Guard decides whether one protected view may render. It owns its
// authorization state privately, drives the pure transition machine through
// an explicit event queue, and only advances when a watched input changes.
type Guard struct {
	machine   Machine
	sessions  *session.Controller
	store     *tokenstore.Store
	menus     MenuProvider
	navigator Navigator
	alerter   Alerter
	renderer  Renderer
	cfg       Config
	log       zerolog.Logger

	requestedURL   string
	deniedRedirect func(requestedURL string)

	ctx    context.Context
	cancel context.CancelFunc
	events chan Event

	mu              sync.Mutex
	state           State
	lastErr         error
	lastFingerprint string
	failureCode     gateway.Code
	failureCount    int

	warnOnce  sync.Once
	closeOnce sync.Once
	mountOnce sync.Once
}

// Option defines a function type to modify the Guard instance.
type Option func(*Guard)

// WithAlerter sets the alert surface. Without one, alerts are logged only.
func WithAlerter(alerter Alerter) Option {
	return func(g *Guard) { g.alerter = alerter }
}

// WithRenderer sets the rendering surface. Without one, rendering decisions
// are only observable through State.
func WithRenderer(renderer Renderer) Option {
	return func(g *Guard) { g.renderer = renderer }
}

// WithDeniedRedirect sets an optional redirect invoked when a permission
// check denies the requested URL.
func WithDeniedRedirect(redirect func(requestedURL string)) Option {
	return func(g *Guard) { g.deniedRedirect = redirect }
}

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(g *Guard) { g.log = log }
}

// New creates a guard for one protected view at requestedURL.
func New(
	requestedURL string,
	sessions *session.Controller,
	store *tokenstore.Store,
	menus MenuProvider,
	navigator Navigator,
	cfg Config,
	options ...Option,
) (*Guard, error) {
	if sessions == nil {
		return nil, errors.New("[guard.New] session controller is required")
	}
	if store == nil {
		return nil, errors.New("[guard.New] token store is required")
	}
	if menus == nil {
		return nil, errors.New("[guard.New] menu provider is required")
	}
	if navigator == nil {
		return nil, errors.New("[guard.New] navigator is required")
	}
	if cfg == nil {
		return nil, errors.New("[guard.New] config is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	g := &Guard{
		machine:      Machine{Bypass: cfg.GetGuardBypass()},
		sessions:     sessions,
		store:        store,
		menus:        menus,
		navigator:    navigator,
		cfg:          cfg,
		log:          zerolog.Nop(),
		requestedURL: requestedURL,
		ctx:          ctx,
		cancel:       cancel,
		events:       make(chan Event, 16),
		state:        StateIdle,
	}
	for _, opt := range options {
		opt(g)
	}
	return g, nil
}

// Mount starts the guard's event loop and kicks off the authorization
// sequence. Calling Mount more than once is a no-op.
func (g *Guard) Mount() {
	g.mountOnce.Do(func() {
		go g.run()
		g.enqueue(Event{kind: evStart})
	})
}

// Close stops the guard. Effects completing afterwards become no-ops.
func (g *Guard) Close() {
	g.closeOnce.Do(g.cancel)
}

// Retry resets the machine to Idle and restarts the sequence. Wired to the
// manual retry affordances of the error view and blocking overlay.
func (g *Guard) Retry() {
	g.enqueue(Event{kind: evRetry})
}

// NotifyUserChanged tells the guard the session user may have changed, e.g.
// after a background profile refresh. Revalidation is triggered at most once
// per actual identity change.
func (g *Guard) NotifyUserChanged() {
	fingerprint := userFingerprint(g.sessions.User())

	g.mu.Lock()
	changed := fingerprint != g.lastFingerprint
	if changed {
		g.lastFingerprint = fingerprint
	}
	g.mu.Unlock()

	if changed {
		g.enqueue(Event{kind: evUserChanged})
	}
}

// State returns the current authorization state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Guard) enqueue(ev Event) {
	select {
	case g.events <- ev:
	case <-g.ctx.Done():
	}
}

func (g *Guard) run() {
	for {
		select {
		case <-g.ctx.Done():
			return
		case ev := <-g.events:
			g.step(ev)
		}
	}
}

func (g *Guard) step(ev Event) {
	g.mu.Lock()
	prev := g.state
	next, effects := g.machine.Next(prev, ev)
	g.state = next
	if next == StateAuthorized && prev != StateAuthorized {
		// Baseline the identity so NotifyUserChanged only revalidates on an
		// actual change from the authorized user.
		g.lastFingerprint = userFingerprint(g.sessions.User())
	}
	if ev.kind == evMenuResolved && prev == StateRevalidating && next == StateAuthorized {
		// A completed revalidation resets the failure damping window.
		g.failureCount = 0
		g.failureCode = ""
	}
	g.mu.Unlock()

	if next != prev {
		g.log.Debug().Str("from", string(prev)).Str("to", string(next)).Msg("authorization state changed")
		g.render(next)
	}
	for _, effect := range effects {
		g.execute(effect)
	}
}

func (g *Guard) execute(effect Effect) {
	switch effect.kind {
	case efCheckToken:
		g.enqueue(Event{
			kind:             evTokenChecked,
			tokenValid:       g.store.IsAccessValid() || g.store.IsRefreshValid(),
			userPresent:      g.sessions.User() != nil,
			profileAttempted: g.sessions.ProfileAttempted(),
		})

	case efLoadProfile:
		g.loadProfile()

	case efCheckPermissions:
		g.checkPermissions()

	case efRedirectLogin:
		g.log.Info().Str("url", g.requestedURL).Msg("no valid tokens, redirecting to login")
		g.navigator.RedirectToLogin(g.requestedURL)

	case efRedirectDenied:
		g.log.Info().Str("url", g.requestedURL).Msg("requested url not permitted")
		if g.deniedRedirect != nil {
			g.deniedRedirect(g.requestedURL)
		}

	case efRestart:
		g.mu.Lock()
		g.lastErr = nil
		g.mu.Unlock()
		g.enqueue(Event{kind: evStart})

	case efWarnFallback:
		g.warnOnce.Do(func() {
			g.log.Warn().Msg("menu map missing or empty, falling back to the default page only")
			if g.alerter != nil {
				g.alerter.ShowWarning("navigation permissions unavailable, access is limited to the default page")
			}
		})

	case efBlockingError:
		g.mu.Lock()
		g.lastErr = effect.err
		g.mu.Unlock()
		if g.alerter != nil {
			g.alerter.ShowBlockingError("Connection problem", "the server could not be reached, check your connection and retry", g.Retry)
		}

	case efMaybeAlert:
		g.dampedAlert(effect)
	}
}

func (g *Guard) loadProfile() {
	err := g.sessions.LoadProfile(g.ctx)
	if err == nil {
		g.enqueue(Event{kind: evProfileLoaded})
		return
	}
	g.enqueue(Event{kind: evProfileFailed, code: errorCode(err), err: err})
}

func (g *Guard) checkPermissions() {
	revalidating := g.State() == StateRevalidating

	menu, err := g.menus.Menu(g.ctx)
	if err != nil && revalidating {
		g.enqueue(Event{kind: evRevalidateFailed, code: errorCode(err), err: err})
		return
	}
	if err != nil || menu.Empty() {
		// Fallback policy: only the designated default page (and the root
		// path) stays reachable when no menu map is available.
		allowed := g.requestedURL == "/" || g.requestedURL == "" || urlCovers(g.cfg.GetDefaultPage(), g.requestedURL)
		g.enqueue(Event{kind: evMenuResolved, allowed: allowed, fallback: true})
		return
	}
	g.enqueue(Event{kind: evMenuResolved, allowed: menu.Allows(g.requestedURL)})
}

// dampedAlert counts consecutive same-kind revalidation failures and only
// surfaces a visible alert once the threshold is crossed.
func (g *Guard) dampedAlert(effect Effect) {
	g.mu.Lock()
	if g.failureCode == effect.code {
		g.failureCount++
	} else {
		g.failureCode = effect.code
		g.failureCount = 1
	}
	count := g.failureCount
	g.mu.Unlock()

	g.log.Warn().Str("code", string(effect.code)).Int("consecutive", count).Err(effect.err).Msg("revalidation failed")
	if count > alertThreshold && g.alerter != nil {
		g.alerter.ShowBlockingError("Session check failed", "your session could not be re-validated", g.Retry)
	}
}

func (g *Guard) render(s State) {
	if g.renderer == nil {
		return
	}
	switch {
	case s.Loading():
		g.renderer.RenderLoading()
	case s == StateAuthorized:
		g.renderer.RenderContent()
	case s == StateRevalidating:
		g.renderer.RenderRevalidating()
	case s == StateUnauthorized:
		g.renderer.RenderDenied()
	case s == StateError:
		g.mu.Lock()
		err := g.lastErr
		if err == nil {
			err = g.sessions.Error()
		}
		g.mu.Unlock()
		g.renderer.RenderError(err, g.Retry)
	}
}

func errorCode(err error) gateway.Code {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return gateway.UnknownError
}

func userFingerprint(user *session.User) string {
	if user == nil {
		return ""
	}
	return user.ID + "|" + user.TenantID + "|" + strings.Join(user.Permissions, ",")
}
