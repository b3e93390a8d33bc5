package blog

import (
	"fmt"
	"time"
)

var _ Session = &SessionObject{}

// SessionObject is the claims view handed to callers after token validation
type SessionObject struct {
	Subject        string     `json:"subject,omitempty"`
	Issuer         string     `json:"issuer,omitempty"`
	IssuedAt       *time.Time `json:"issued_at,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

func (s *SessionObject) GetSubject() string {
	return s.Subject
}

func (s *SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) GetExpiration() *time.Time {
	return s.ExpirationDate
}

func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	return fmt.Sprintf("sub=%s iss=%s iat=%s", s.Subject, s.Issuer, issuedAt)
}

// sessionFromAuthClaims creates a SessionObject from validated claims
func sessionFromAuthClaims(claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrTokenMalformed
	}

	issuedAt := claims.IssuedAt()
	expiresAt := claims.Expires()

	issuer := ""
	if jwtClaims, ok := claims.(*JWTClaims); ok {
		issuer = jwtClaims.RegisteredClaims.Issuer
	}

	return &SessionObject{
		Subject:        claims.Subject(),
		Issuer:         issuer,
		IssuedAt:       &issuedAt,
		ExpirationDate: &expiresAt,
	}, nil
}

// UserSummary is the client-facing identity projection. It mirrors the
// stored record minus the password hash.
type UserSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FullName    string `json:"full_name,omitempty"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

// NewUserSummary projects an identity into its client-facing summary.
func NewUserSummary(identity Identity) UserSummary {
	return UserSummary{
		ID:          identity.ID(),
		Username:    identity.Username(),
		Email:       identity.Email(),
		FullName:    identity.FullName(),
		IsActive:    identity.IsActive(),
		IsSuperuser: identity.IsSuperuser(),
	}
}

// LoginSession is the payload returned to clients on login and refresh
type LoginSession struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"`
	User        UserSummary `json:"user"`
}
