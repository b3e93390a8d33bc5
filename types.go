package blog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Logger takes a message followed by alternating key-value attributes, the
// slog convention go-logger follows.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Session holds the claims view of a validated bearer token
type Session interface {
	GetSubject() string
	GetIssuer() string
	GetIssuedAt() *time.Time
	GetExpiration() *time.Time
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	UUID() uuid.UUID
	Username() string
	Email() string
	FullName() string
	IsActive() bool
	IsSuperuser() bool
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Verify(ctx context.Context, identifier, password string) (Identity, error)
	CreateSession(identity Identity) (*LoginSession, error)
	SessionFromToken(token string) (Session, error)
	IdentityFromSession(ctx context.Context, session Session) (Identity, error)
}

// LoginPayload is the shape login handlers consume
type LoginPayload interface {
	GetIdentifier() string
	GetPassword() string
}

// Config holds auth options. Implementations are built once at process start
// and never mutated afterwards.
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetAuthScheme() string
	GetIssuer() string
}

// IdentityProvider ensures we have a store to retrieve auth identities
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error)
	FindIdentityByUsername(ctx context.Context, username string) (Identity, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// defLogger is the stdout fallback used when no Logger is injected. Callers
// pass a message plus key-value pairs, never printf verbs.
type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Println(formatLogLine("ERR", msg, args))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Println(formatLogLine("WRN", msg, args))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Println(formatLogLine("INF", msg, args))
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Println(formatLogLine("DBG", msg, args))
}

func formatLogLine(level, msg string, args []any) string {
	line := "[" + level + "] BLOG " + msg
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			line += fmt.Sprintf(" %v=%v", args[i], args[i+1])
		} else {
			line += fmt.Sprintf(" %v", args[i])
		}
	}
	return line
}
