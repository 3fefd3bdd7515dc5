package tokenstore

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the subset of JWT claims the client cares about for
// diagnostics and identity prefill. Access tokens issued by the backend are
// JWTs, but the client never relies on that: an opaque token simply yields
// no claims.
type TokenClaims struct {
	Subject   string
	Email     string
	TenantID  string
	ExpiresAt time.Time
}

// PeekClaims extracts claims from a JWT without verifying its signature.
// The client has no key material to verify with; the claims are advisory
// only and must never gate authorization decisions.
func PeekClaims(rawToken string) (TokenClaims, bool) {
	if rawToken == "" {
		return TokenClaims{}, false
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(rawToken, claims); err != nil {
		return TokenClaims{}, false
	}

	out := TokenClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if tenant, ok := claims["tenant_id"].(string); ok {
		out.TenantID = tenant
	}
	return out, out != TokenClaims{}
}
