package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlinks/internal/auth"
	"github.com/serroba/shortlinks/internal/shortener"
	"go.uber.org/zap"
)

// httpError maps domain errors to HTTP errors. Unexpected failures are logged
// and reported without their cause.
func httpError(logger *zap.Logger, action string, err error) error {
	switch {
	case errors.Is(err, shortener.ErrInvalidFormat),
		errors.Is(err, shortener.ErrCodeTaken),
		errors.Is(err, auth.ErrInvalidUsername),
		errors.Is(err, auth.ErrWeakPassword):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound(shortener.ErrNotFound.Error())
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUserNotFound):
		return huma.Error401Unauthorized(err.Error())
	case errors.Is(err, auth.ErrUsernameTaken):
		return huma.Error409Conflict(err.Error())
	default:
		logger.Error(action+" failed", zap.Error(err))

		return huma.Error500InternalServerError("internal server error")
	}
}
