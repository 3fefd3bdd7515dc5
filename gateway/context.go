package gateway

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// contextKeySkipAuthRefresh opts a request out of 401 refresh handling.
	// The refresh call itself carries it to prevent recursive refresh.
	contextKeySkipAuthRefresh contextKey = "skip_auth_refresh"
	// contextKeyRetried marks a request that has already been replayed once
	// after a refresh. At most one automatic retry happens per request.
	contextKeyRetried contextKey = "retried"
)

// SkipAuthRefresh returns a context whose requests bypass the automatic
// refresh-and-retry on 401. Failures are still normalized.
func SkipAuthRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKeySkipAuthRefresh, true)
}

func skipsAuthRefresh(ctx context.Context) bool {
	skip, _ := ctx.Value(contextKeySkipAuthRefresh).(bool)
	return skip
}

func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKeyRetried, true)
}

func isRetried(ctx context.Context) bool {
	retried, _ := ctx.Value(contextKeyRetried).(bool)
	return retried
}
