package blog

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Message  string `json:"message"`
	TextCode string `json:"text_code,omitempty"`
}

// RenderError maps a rich error onto an HTTP status and JSON body. Clients
// see only the message and text code; internal diagnostic detail (hash decode
// failures, signing method mismatches, metadata) stays server-side.
func RenderError(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	status := richErr.Code
	if status < http.StatusBadRequest || status > http.StatusNetworkAuthenticationRequired {
		status = http.StatusInternalServerError
	}

	return c.Status(status).JSON(ErrorResponse{
		Error: ErrorBody{
			Message:  richErr.Message,
			TextCode: richErr.TextCode,
		},
	})
}

// NotFound builds the 404-class error used by lookup handlers.
func NotFound(resource string) *goerrors.Error {
	return goerrors.New(resource+" not found", goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound)
}

// Conflict builds the 400-class error used for uniqueness violations.
func Conflict(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest)
}
