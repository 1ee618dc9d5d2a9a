package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	clienterrors "github.com/firmaboard/firmaboard-go/internal/errors"
)

// Claims is the subset of JWT claims the client cares about for display.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// PeekClaims decodes a stored access token without verifying its signature.
// The backend remains the authority on token validity; this exists only so
// the client can show who is signed in and warn about imminent expiry.
func PeekClaims(token string) (Claims, error) {
	var raw struct {
		jwt.RegisteredClaims
		Email string `json:"email"`
	}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &raw); err != nil {
		return Claims{}, clienterrors.Wrapf(clienterrors.ErrInvalidToken, "peek claims: %v", err)
	}

	c := Claims{Subject: raw.Subject, Email: raw.Email}
	if raw.ExpiresAt != nil {
		c.ExpiresAt = raw.ExpiresAt.Time
	}
	return c, nil
}

// Expired reports whether the claims carry an expiry in the past.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(now)
}
