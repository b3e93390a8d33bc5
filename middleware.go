package blog

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Guard is the three-stage access gate route handlers compose:
// Protected -> RequireActive -> RequireSuperuser. Each stage either passes
// the resolved identity through unchanged or terminates the request with a
// typed failure.
type Guard struct {
	cfg          Config
	auth         Authenticator
	logger       Logger
	ErrorHandler func(c *fiber.Ctx, err error) error
}

// NewGuard builds a Guard around an authenticator and immutable config.
func NewGuard(auth Authenticator, cfg Config) *Guard {
	g := &Guard{
		cfg:    cfg,
		auth:   auth,
		logger: defLogger{},
	}
	g.ErrorHandler = RenderError
	return g
}

func (g *Guard) WithLogger(logger Logger) *Guard {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// Protected is stage one: extract the bearer token, validate it, and
// re-resolve the subject to a stored identity. A valid signature whose
// subject no longer resolves is treated exactly like an invalid token.
func (g *Guard) Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := extractBearerToken(c, g.cfg.GetAuthScheme())
		if err != nil {
			return g.ErrorHandler(c, err)
		}

		session, err := g.auth.SessionFromToken(raw)
		if err != nil {
			return g.ErrorHandler(c, err)
		}

		identity, err := g.auth.IdentityFromSession(c.UserContext(), session)
		if err != nil {
			return g.ErrorHandler(c, err)
		}

		c.Locals(g.cfg.GetContextKey(), identity)
		c.SetUserContext(WithSessionContext(
			WithIdentityContext(c.UserContext(), identity),
			session,
		))

		return c.Next()
	}
}

// RequireActive is stage two: the resolved identity must have its active
// flag set. Requires Protected to have run.
func (g *Guard) RequireActive() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromFiber(c, g.cfg.GetContextKey())
		if !ok {
			return g.ErrorHandler(c, ErrTokenMalformed)
		}

		if !identity.IsActive() {
			g.logger.Info("request blocked, account disabled", "username", identity.Username())
			return g.ErrorHandler(c, ErrAccountDisabled)
		}

		return c.Next()
	}
}

// RequireSuperuser is stage three, declared only on administrative routes.
// Requires Protected (and normally RequireActive) to have run.
func (g *Guard) RequireSuperuser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromFiber(c, g.cfg.GetContextKey())
		if !ok {
			return g.ErrorHandler(c, ErrTokenMalformed)
		}

		if !identity.IsSuperuser() {
			g.logger.Info("request blocked, missing privilege", "username", identity.Username())
			return g.ErrorHandler(c, ErrNotAuthorized)
		}

		return c.Next()
	}
}

// IdentityFromFiber reads the identity a Guard stage stored in the request
// locals.
func IdentityFromFiber(c *fiber.Ctx, key string) (Identity, bool) {
	raw := c.Locals(key)
	if raw == nil {
		return nil, false
	}
	identity, ok := raw.(Identity)
	return identity, ok
}

func extractBearerToken(c *fiber.Ctx, scheme string) (string, error) {
	if scheme == "" {
		scheme = "Bearer"
	}

	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", ErrTokenMalformed
	}

	prefix := scheme + " "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrTokenMalformed
	}

	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", ErrTokenMalformed
	}

	return token, nil
}
