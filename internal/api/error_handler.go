package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
)

// envelope mirrors the handler response body so error responses share the
// exact shape of success responses.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to a 200 response with success=false and a
//     human-readable message (the platform's envelope convention).
//   - Keeps echo's own HTTP errors (401 from auth middleware, 404 routes,
//     bind failures) on their original status codes.
//   - Logs unexpected errors internally without leaking details to clients.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, envelope{Success: false, Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Domain-level failures stay on HTTP 200; the envelope carries the verdict.
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusOK, "Could not find a user with the given id."
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusOK, "A user with the given email or phone already exists."
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusOK, "Invalid email or password."
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusOK, "Invalid user role."
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusOK, "You are not allowed to perform this action."
	case errors.Is(err, domain.ErrConnectionNotFound):
		return http.StatusOK, "Could not find the request."
	case errors.Is(err, domain.ErrConnectionExists):
		return http.StatusOK, "A request between you already exists."
	case errors.Is(err, domain.ErrInvalidReference):
		return http.StatusOK, "Invalid id."
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusOK, "The request can no longer be updated."
	case errors.Is(err, domain.ErrMembershipUpdate):
		return http.StatusOK, "Could not update the users."
	case errors.Is(err, domain.ErrTagNotFound):
		return http.StatusOK, "Could not find the experience tag."
	case errors.Is(err, domain.ErrArticleNotFound):
		return http.StatusOK, "Could not find the article."
	case errors.Is(err, domain.ErrReportNotFound):
		return http.StatusOK, "Could not find the report."
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Something went wrong. Please try again."
}
