package blog

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the read-only view of a token's payload
type AuthClaims interface {
	Subject() string
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete claim set carried by issued tokens. It is a fixed
// structure on purpose: the subject (username) and the registered timestamps
// are the only claims, so nothing outside the codec can inject fields.
type JWTClaims struct {
	jwt.RegisteredClaims
}

var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim, the username the token was minted for.
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
