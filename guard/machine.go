package guard

import "github.com/jrsteele09/go-auth-client/gateway"

// Machine is the pure transition function of the authorization guard. It
// holds only static configuration; all dynamic inputs arrive as event
// payloads, so Next is deterministic and side-effect free.
type Machine struct {
	// Bypass short-circuits the whole sequence straight to Authorized.
	// Only set outside production.
	Bypass bool
}

// Next computes the successor state for an event and the effects the runtime
// must execute. Events that do not apply to the current state are ignored,
// which is what makes a stale effect completion (e.g. after an unmount and
// restart) harmless.
func (m Machine) Next(s State, ev Event) (State, []Effect) {
	switch ev.kind {
	case evRetry:
		return StateIdle, []Effect{{kind: efRestart}}

	case evStart:
		if s != StateIdle {
			return s, nil
		}
		if m.Bypass {
			return StateAuthorized, nil
		}
		return StateCheckingToken, []Effect{{kind: efCheckToken}}

	case evTokenChecked:
		switch s {
		case StateCheckingToken:
			if !ev.tokenValid {
				return StateUnauthorized, []Effect{{kind: efRedirectLogin}}
			}
			if !ev.userPresent && !ev.profileAttempted {
				return StateLoadingProfile, []Effect{{kind: efLoadProfile}}
			}
			return StateCheckingPermissions, []Effect{{kind: efCheckPermissions}}
		case StateRevalidating:
			// Revalidation repeats the token and permission checks but
			// never reloads the profile.
			if !ev.tokenValid {
				return StateUnauthorized, []Effect{{kind: efRedirectLogin}}
			}
			return StateRevalidating, []Effect{{kind: efCheckPermissions}}
		}

	case evProfileLoaded:
		if s == StateLoadingProfile {
			return StateCheckingPermissions, []Effect{{kind: efCheckPermissions}}
		}

	case evProfileFailed:
		if s != StateLoadingProfile {
			return s, nil
		}
		if ev.code == gateway.NetworkError {
			// Recoverable: keep loading underneath a blocking overlay whose
			// retry re-enters Idle.
			return StateLoadingProfile, []Effect{{kind: efBlockingError, code: ev.code, err: ev.err}}
		}
		return StateError, nil

	case evMenuResolved:
		switch s {
		case StateCheckingPermissions:
			if !ev.allowed {
				return StateUnauthorized, []Effect{{kind: efRedirectDenied}}
			}
			if ev.fallback {
				return StateAuthorized, []Effect{{kind: efWarnFallback}}
			}
			return StateAuthorized, nil
		case StateRevalidating:
			if !ev.allowed {
				return StateUnauthorized, []Effect{{kind: efRedirectDenied}}
			}
			return StateAuthorized, nil
		}

	case evRevalidateFailed:
		// A collaborator failure mid-revalidation keeps the content mounted;
		// alerting is damped by the runtime.
		if s == StateRevalidating {
			return StateAuthorized, []Effect{{kind: efMaybeAlert, code: ev.code, err: ev.err}}
		}

	case evUserChanged:
		if s == StateAuthorized {
			return StateRevalidating, []Effect{{kind: efCheckToken}}
		}
	}
	return s, nil
}
