package blog

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeCredentialMismatch = "CREDENTIAL_MISMATCH"
	textCodeTokenExpired       = "TOKEN_EXPIRED"
	textCodeTokenMalformed     = "TOKEN_MALFORMED"
	textCodeAccountDisabled    = "ACCOUNT_DISABLED"
	textCodeForbidden          = "FORBIDDEN"
)

// ErrMismatchedHashAndPassword is returned when a login identifier and secret
// do not match a stored identity. A missing user and a wrong password are
// deliberately indistinguishable to the caller.
var ErrMismatchedHashAndPassword = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode(textCodeCredentialMismatch).
	WithCode(goerrors.CodeUnauthorized)

// ErrIdentityNotFound is returned when a token subject no longer resolves to
// a stored identity. Surfaced to clients as a plain authentication failure.
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned for structurally valid tokens past their expiry.
var ErrTokenExpired = goerrors.New("authentication token expired", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed covers every other token failure: bad structure, missing
// or mismatched signature, unexpected signing method. The split from
// ErrTokenExpired exists for logs only; both render identically to clients.
var ErrTokenMalformed = goerrors.New("invalid authentication token", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountDisabled is returned when a valid identity has its active flag
// cleared. This is an authorization-category failure, not a credentials one.
var ErrAccountDisabled = goerrors.New("account disabled", goerrors.CategoryAuthz).
	WithTextCode(textCodeAccountDisabled).
	WithCode(goerrors.CodeBadRequest)

// ErrNotAuthorized is returned when an active identity lacks the required
// privilege or does not own the targeted resource.
var ErrNotAuthorized = goerrors.New("insufficient permissions", goerrors.CategoryAuthz).
	WithTextCode(textCodeForbidden).
	WithCode(goerrors.CodeForbidden)

// ErrNoEmptyString rejects empty secrets before hashing.
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == textCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == textCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
