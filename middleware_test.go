package blog_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-blog"
	"github.com/stretchr/testify/assert"
)

type guardFixture struct {
	app    *fiber.App
	auther *blog.Auther
	store  *memUserStore
}

func setupGuardApp(t *testing.T) *guardFixture {
	t.Helper()

	hash, err := blog.HashPassword("password123")
	assert.NoError(t, err)

	store := newMemUserStore(
		&blog.User{Username: "admin", Email: "admin@example.com", PasswordHash: hash, IsActive: true, IsSuperuser: true},
		&blog.User{Username: "john_doe", Email: "john@example.com", PasswordHash: hash, IsActive: true},
		&blog.User{Username: "dan_disabled", Email: "dan@example.com", PasswordHash: hash, IsActive: false},
	)

	cfg := newTestConfig()
	auther := blog.NewAuthenticator(blog.NewUserProvider(store), cfg)
	guard := blog.NewGuard(auther, cfg)

	app := fiber.New()

	whoami := func(c *fiber.Ctx) error {
		identity, ok := blog.IdentityFromFiber(c, cfg.GetContextKey())
		if !ok {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"username": identity.Username()})
	}

	app.Get("/protected", guard.Protected(), whoami)
	app.Get("/active", guard.Protected(), guard.RequireActive(), whoami)
	app.Get("/admin", guard.Protected(), guard.RequireActive(), guard.RequireSuperuser(), whoami)

	return &guardFixture{app: app, auther: auther, store: store}
}

func (f *guardFixture) tokenFor(t *testing.T, username string) string {
	t.Helper()

	user, err := f.store.GetByUsername(context.Background(), username)
	assert.NoError(t, err)

	session, err := f.auther.CreateSession(blog.NewIdentityFromUser(user))
	assert.NoError(t, err)

	return session.AccessToken
}

func authGet(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := app.Test(req)
	assert.NoError(t, err)
	return res
}

func decodeError(t *testing.T, res *http.Response) blog.ErrorResponse {
	t.Helper()

	body, err := io.ReadAll(res.Body)
	assert.NoError(t, err)

	var out blog.ErrorResponse
	assert.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestGuardProtected(t *testing.T) {
	f := setupGuardApp(t)

	t.Run("missing header", func(t *testing.T) {
		res := authGet(t, f.app, "/protected", "")
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abc123")

		res, err := f.app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		res := authGet(t, f.app, "/protected", "not.a.token")
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

		body := decodeError(t, res)
		assert.Equal(t, "TOKEN_MALFORMED", body.Error.TextCode)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := blog.NewTokenService([]byte("test-signing-key"), -5, "blog-test", nil)

		user, err := f.store.GetByUsername(context.Background(), "john_doe")
		assert.NoError(t, err)

		token, err := expired.Generate(blog.NewIdentityFromUser(user))
		assert.NoError(t, err)

		res := authGet(t, f.app, "/protected", token)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

		body := decodeError(t, res)
		assert.Equal(t, "TOKEN_EXPIRED", body.Error.TextCode)
	})

	t.Run("token over deleted user", func(t *testing.T) {
		ghost := &blog.User{Username: "ghost", Email: "ghost@example.com", IsActive: true}
		session, err := f.auther.CreateSession(blog.NewIdentityFromUser(ghost))
		assert.NoError(t, err)

		res := authGet(t, f.app, "/protected", session.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("valid token resolves identity", func(t *testing.T) {
		res := authGet(t, f.app, "/protected", f.tokenFor(t, "john_doe"))
		assert.Equal(t, http.StatusOK, res.StatusCode)

		body, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		assert.Contains(t, string(body), "john_doe")
	})
}

func TestGuardRequireActive(t *testing.T) {
	f := setupGuardApp(t)

	t.Run("active user passes", func(t *testing.T) {
		res := authGet(t, f.app, "/active", f.tokenFor(t, "john_doe"))
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("disabled user is rejected with a valid token", func(t *testing.T) {
		// Token stays cryptographically valid; the per-request re-resolution
		// makes the disable effective immediately.
		res := authGet(t, f.app, "/active", f.tokenFor(t, "dan_disabled"))
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)

		body := decodeError(t, res)
		assert.Equal(t, "ACCOUNT_DISABLED", body.Error.TextCode)
	})
}

func TestGuardRequireSuperuser(t *testing.T) {
	f := setupGuardApp(t)

	t.Run("superuser passes", func(t *testing.T) {
		res := authGet(t, f.app, "/admin", f.tokenFor(t, "admin"))
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("regular user is forbidden", func(t *testing.T) {
		res := authGet(t, f.app, "/admin", f.tokenFor(t, "john_doe"))
		assert.Equal(t, http.StatusForbidden, res.StatusCode)

		body := decodeError(t, res)
		assert.Equal(t, "FORBIDDEN", body.Error.TextCode)
	})
}
