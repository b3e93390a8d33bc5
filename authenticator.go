package blog

import (
	"context"
)

// Auther wires the identity provider and token service into the
// Authenticator interface consumed by the HTTP layer.
type Auther struct {
	provider        IdentityProvider
	signingKey      []byte
	tokenExpiration int
	issuer          string
	logger          Logger
	tokenService    TokenService
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		defLogger{},
	)

	return &Auther{
		provider:        provider,
		signingKey:      []byte(opts.GetSigningKey()),
		tokenExpiration: opts.GetTokenExpiration(),
		issuer:          opts.GetIssuer(),
		logger:          defLogger{},
		tokenService:    tokenService,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	s.tokenService = NewTokenService(
		s.signingKey,
		s.tokenExpiration,
		s.issuer,
		logger,
	)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Verify resolves the identifier and checks the password. It performs no
// status gating; see Guard and the login handler for the active check.
func (s *Auther) Verify(ctx context.Context, identifier, password string) (Identity, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Info("Verify identity failed", "identifier", identifier)
		return nil, err
	}

	if identity == nil {
		s.logger.Error("Verify identity returned nil without error")
		return nil, ErrMismatchedHashAndPassword
	}

	return identity, nil
}

// CreateSession mints a bearer token for the identity and wraps it with the
// client-facing summary. Callers are expected to have gated on the active
// flag already; this is claim minting only.
func (s *Auther) CreateSession(identity Identity) (*LoginSession, error) {
	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("CreateSession token generation failed", "error", err)
		return nil, err
	}

	return &LoginSession{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.tokenExpiration * 60,
		User:        NewUserSummary(identity),
	}, nil
}

// SessionFromToken validates a raw bearer token and returns its claims view.
func (s *Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Info("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims", "error", err)
		return nil, err
	}

	return session, nil
}

// IdentityFromSession re-resolves the token subject against the store. A
// valid signature over a since-deleted identity fails closed: the caller gets
// the same failure an invalid token would produce.
func (s *Auther) IdentityFromSession(ctx context.Context, session Session) (Identity, error) {
	identity, err := s.provider.FindIdentityByUsername(ctx, session.GetSubject())
	if err != nil {
		s.logger.Info("IdentityFromSession subject did not resolve", "subject", session.GetSubject())
		return nil, err
	}

	return identity, nil
}

var _ Authenticator = (*Auther)(nil)
