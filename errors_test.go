package blog_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/goliatone/go-blog"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestIsTokenExpiredError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"expired error", blog.ErrTokenExpired, true},
		{"malformed error", blog.ErrTokenMalformed, false},
		{"plain jwt expiry message", errors.New("token is expired by 1h"), true},
		{"unrelated error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, blog.IsTokenExpiredError(tt.err))
		})
	}
}

func TestIsMalformedError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"malformed error", blog.ErrTokenMalformed, true},
		{"identity not found maps to malformed", blog.ErrIdentityNotFound, true},
		{"expired error", blog.ErrTokenExpired, false},
		{"plain jwt malformed message", fmt.Errorf("token is malformed: %w", errors.New("bad segments")), true},
		{"unrelated error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, blog.IsMalformedError(tt.err))
		})
	}
}

func TestErrorTaxonomy(t *testing.T) {
	t.Run("credential mismatch is a 401 auth failure", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuth, blog.ErrMismatchedHashAndPassword.Category)
		assert.Equal(t, goerrors.CodeUnauthorized, blog.ErrMismatchedHashAndPassword.Code)
	})

	t.Run("token failures are 401 auth failures", func(t *testing.T) {
		assert.Equal(t, goerrors.CodeUnauthorized, blog.ErrTokenExpired.Code)
		assert.Equal(t, goerrors.CodeUnauthorized, blog.ErrTokenMalformed.Code)
		assert.Equal(t, goerrors.CodeUnauthorized, blog.ErrIdentityNotFound.Code)
	})

	t.Run("account disabled is a 400 authz failure", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuthz, blog.ErrAccountDisabled.Category)
		assert.Equal(t, goerrors.CodeBadRequest, blog.ErrAccountDisabled.Code)
	})

	t.Run("not authorized is a 403 authz failure", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuthz, blog.ErrNotAuthorized.Category)
		assert.Equal(t, goerrors.CodeForbidden, blog.ErrNotAuthorized.Code)
	})
}
