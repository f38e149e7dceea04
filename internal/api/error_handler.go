package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/user-admin/internal/api/handler"
	"github.com/99minutos/user-admin/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders request validation and uniqueness failures as 422 with per-field messages.
//   - Maps the remaining domain errors to their HTTP status codes.
//   - Logs unexpected errors without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ve *handler.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: ve.Fields}
	}

	// Uniqueness and unknown roles surface as field errors, like the validator's.
	if field := domain.FieldOf(err); field != "" {
		msg := conflictMessage(err)
		return http.StatusUnprocessableEntity, errorResponse{Error: msg, Fields: map[string]string{field: msg}}
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "user not found"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "access forbidden"}
	case errors.Is(err, domain.ErrInactiveUser):
		return http.StatusForbidden, errorResponse{Error: "user is inactive"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

// conflictMessage returns the client-facing text for a field-level domain
// error, without the wrapping operation prefixes.
func conflictMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrRoleNotFound):
		return "the selected roles are invalid"
	case errors.Is(err, domain.ErrUsernameTaken):
		return "the " + domain.ErrUsernameTaken.Error()
	case errors.Is(err, domain.ErrEmailTaken):
		return "the " + domain.ErrEmailTaken.Error()
	case errors.Is(err, domain.ErrAPITokenTaken):
		return "the " + domain.ErrAPITokenTaken.Error()
	case errors.Is(err, domain.ErrPasswordTooLong):
		return "the " + domain.ErrPasswordTooLong.Error()
	}
	return err.Error()
}
