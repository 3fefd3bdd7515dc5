package session

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenSource returns an oauth2.TokenSource view over the session's
// credentials so third-party HTTP stacks can consume them. Token returns the
// current access token while it is valid and refreshes through the gateway
// (sharing any in-flight refresh) when it is not.
func (c *Controller) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, ctrl: c}
}

type tokenSource struct {
	ctx  context.Context
	ctrl *Controller
}

var _ oauth2.TokenSource = (*tokenSource)(nil)

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	if !ts.ctrl.store.IsAccessValid() {
		if err := ts.ctrl.api.Refresh(ts.ctx); err != nil {
			return nil, err
		}
	}
	pair := ts.ctrl.store.Pair()
	return &oauth2.Token{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		Expiry:      pair.AccessExpiry,
	}, nil
}
