package gateway

import (
	"context"
	"net/http"
	"time"
)

// RefreshPath is the auth endpoint exchanging a refresh token for a new
// access token.
const RefreshPath = "/api/auth/refresh"

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken,omitempty"`
	ExpiresIn        int64  `json:"expiresIn"`
	RefreshExpiresIn int64  `json:"refreshExpiresIn,omitempty"`
}

// Refresh forces a token exchange, sharing any refresh already in flight.
// Most callers never need this: 401 handling refreshes automatically. It
// exists for consumers that need a valid access token ahead of time, such as
// the session's oauth2.TokenSource view.
func (c *Client) Refresh(ctx context.Context) error {
	return c.refreshTokens(ctx)
}

// refreshTokens exchanges the current refresh token for a new access token
// and feeds the result into the token store. Concurrent callers share one
// in-flight exchange: whichever request observes the 401 first performs the
// call, the rest wait for its outcome.
func (c *Client) refreshTokens(ctx context.Context) error {
	_, err, shared := c.refreshGroup.Do("refresh", func() (any, error) {
		c.metrics.observeRefresh()
		c.log.Debug().Msg("refreshing access token")

		refreshToken := c.store.RefreshToken()
		if refreshToken == "" {
			return nil, newAPIError(Unauthorized, 0, "no refresh token available")
		}

		// The exchange must not inherit the initiating request's
		// cancellation: other requests may be waiting on its result.
		// The per-request timeout in send still bounds it.
		refreshCtx := SkipAuthRefresh(context.WithoutCancel(ctx))

		var resp refreshResponse
		if err := c.Do(refreshCtx, http.MethodPost, RefreshPath, refreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
			return nil, err
		}
		if resp.AccessToken == "" {
			return nil, newAPIError(UnknownError, 0, "refresh response carried no access token")
		}

		accessTTL := time.Duration(resp.ExpiresIn) * time.Second
		if resp.RefreshToken != "" {
			c.store.SetTokens(resp.AccessToken, resp.RefreshToken, accessTTL, time.Duration(resp.RefreshExpiresIn)*time.Second)
		} else {
			c.store.SetAccessToken(resp.AccessToken, accessTTL)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}
	if shared {
		c.log.Debug().Msg("attached to an in-flight token refresh")
	}
	return nil
}
