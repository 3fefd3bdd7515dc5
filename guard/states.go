package guard

import "github.com/jrsteele09/go-auth-client/gateway"

// State is the authorization state of one guarded view tree.
type State string

const (
	StateIdle                State = "Idle"
	StateCheckingToken       State = "CheckingToken"
	StateLoadingProfile      State = "LoadingProfile"
	StateCheckingPermissions State = "CheckingPermissions"
	StateAuthorized          State = "Authorized"
	StateRevalidating        State = "Revalidating"
	StateUnauthorized        State = "Unauthorized"
	StateError               State = "Error"
)

// Loading reports whether the state renders the loading placeholder.
func (s State) Loading() bool {
	switch s {
	case StateIdle, StateCheckingToken, StateLoadingProfile, StateCheckingPermissions:
		return true
	}
	return false
}

type eventKind int

const (
	evStart eventKind = iota
	evTokenChecked
	evProfileLoaded
	evProfileFailed
	evMenuResolved
	evRevalidateFailed
	evUserChanged
	evRetry
)

// Event drives the state machine. Events are produced by the guard runtime
// when a watched input changes or an effect completes; the machine never
// free-runs.
type Event struct {
	kind eventKind

	// evTokenChecked
	tokenValid       bool
	userPresent      bool
	profileAttempted bool

	// evMenuResolved
	allowed  bool
	fallback bool

	// failure events
	code gateway.Code
	err  error
}

type effectKind int

const (
	efCheckToken effectKind = iota
	efLoadProfile
	efCheckPermissions
	efRedirectLogin
	efRedirectDenied
	efRestart
	efWarnFallback
	efBlockingError
	efMaybeAlert
)

// Effect is an instruction to the runtime emitted by a transition. The
// transition function itself performs no I/O.
type Effect struct {
	kind effectKind
	code gateway.Code
	err  error
}
