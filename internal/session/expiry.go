package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yndnr/sessiongate/internal/core/domain"
)

// tokenClaims are the registered claims read from a JWT session token.
type tokenClaims struct {
	subject   string
	expiresAt time.Time
}

// readClaims extracts sub and exp from a JWT without verifying its signature.
// The server verifies tokens; the client only needs the hints. Opaque tokens
// yield zero claims.
func readClaims(token string) tokenClaims {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return tokenClaims{}
	}

	out := tokenClaims{subject: claims.Subject}
	if claims.ExpiresAt != nil {
		out.expiresAt = claims.ExpiresAt.Time
	}
	return out
}

func (s *Store) resolveExpiry(sess domain.Session, claims tokenClaims) time.Time {
	limit := sess.IssuedAt.Add(s.ttl)

	exp := sess.ExpiresAt
	if exp.IsZero() {
		exp = claims.expiresAt
	}
	if exp.IsZero() || exp.After(limit) {
		exp = limit
	}
	return exp
}
