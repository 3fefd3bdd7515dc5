package guard

import (
	"testing"

	"github.com/jrsteele09/go-auth-client/gateway"
	"github.com/stretchr/testify/require"
)

// The machine is a pure function, so transitions are tested directly without
// any runtime or collaborators.

func TestMachineTransitions(t *testing.T) {
	m := Machine{}

	tests := []struct {
		name  string
		state State
		event Event
		want  State
	}{
		{name: "start checks token", state: StateIdle, event: Event{kind: evStart}, want: StateCheckingToken},
		{name: "start ignored outside idle", state: StateAuthorized, event: Event{kind: evStart}, want: StateAuthorized},
		{
			name:  "invalid tokens deny",
			state: StateCheckingToken,
			event: Event{kind: evTokenChecked, tokenValid: false},
			want:  StateUnauthorized,
		},
		{
			name:  "valid tokens without user load profile",
			state: StateCheckingToken,
			event: Event{kind: evTokenChecked, tokenValid: true},
			want:  StateLoadingProfile,
		},
		{
			name:  "valid tokens with user check permissions",
			state: StateCheckingToken,
			event: Event{kind: evTokenChecked, tokenValid: true, userPresent: true},
			want:  StateCheckingPermissions,
		},
		{
			name:  "profile already attempted skips reload",
			state: StateCheckingToken,
			event: Event{kind: evTokenChecked, tokenValid: true, profileAttempted: true},
			want:  StateCheckingPermissions,
		},
		{name: "profile loaded", state: StateLoadingProfile, event: Event{kind: evProfileLoaded}, want: StateCheckingPermissions},
		{
			name:  "profile network error stays recoverable",
			state: StateLoadingProfile,
			event: Event{kind: evProfileFailed, code: gateway.NetworkError},
			want:  StateLoadingProfile,
		},
		{
			name:  "profile terminal error",
			state: StateLoadingProfile,
			event: Event{kind: evProfileFailed, code: gateway.Forbidden},
			want:  StateError,
		},
		{name: "menu allows", state: StateCheckingPermissions, event: Event{kind: evMenuResolved, allowed: true}, want: StateAuthorized},
		{name: "menu denies", state: StateCheckingPermissions, event: Event{kind: evMenuResolved}, want: StateUnauthorized},
		{name: "user change revalidates", state: StateAuthorized, event: Event{kind: evUserChanged}, want: StateRevalidating},
		{name: "user change ignored while denied", state: StateUnauthorized, event: Event{kind: evUserChanged}, want: StateUnauthorized},
		{
			name:  "revalidation token loss denies",
			state: StateRevalidating,
			event: Event{kind: evTokenChecked, tokenValid: false},
			want:  StateUnauthorized,
		},
		{
			name:  "revalidation keeps checking permissions",
			state: StateRevalidating,
			event: Event{kind: evTokenChecked, tokenValid: true},
			want:  StateRevalidating,
		},
		{name: "revalidation success", state: StateRevalidating, event: Event{kind: evMenuResolved, allowed: true}, want: StateAuthorized},
		{name: "revalidation permission loss", state: StateRevalidating, event: Event{kind: evMenuResolved}, want: StateUnauthorized},
		{
			name:  "revalidation collaborator failure keeps content",
			state: StateRevalidating,
			event: Event{kind: evRevalidateFailed, code: gateway.NetworkError},
			want:  StateAuthorized,
		},
		{name: "retry from error", state: StateError, event: Event{kind: evRetry}, want: StateIdle},
		{name: "retry from denied", state: StateUnauthorized, event: Event{kind: evRetry}, want: StateIdle},
		{name: "stale profile event ignored", state: StateAuthorized, event: Event{kind: evProfileLoaded}, want: StateAuthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := m.Next(tt.state, tt.event)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMachineBypass(t *testing.T) {
	m := Machine{Bypass: true}
	got, effects := m.Next(StateIdle, Event{kind: evStart})
	require.Equal(t, StateAuthorized, got)
	require.Empty(t, effects)
}

func TestMachineProfileLoadEffects(t *testing.T) {
	m := Machine{}

	_, effects := m.Next(StateCheckingToken, Event{kind: evTokenChecked, tokenValid: true})
	require.Len(t, effects, 1)
	require.Equal(t, efLoadProfile, effects[0].kind)

	_, effects = m.Next(StateCheckingToken, Event{kind: evTokenChecked, tokenValid: false})
	require.Len(t, effects, 1)
	require.Equal(t, efRedirectLogin, effects[0].kind)
}
