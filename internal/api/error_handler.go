package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gameportal/portal-api/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// bare marks errors rendered as a status code without a body.
type bare struct{}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to status codes and bodies. Unexpected errors are logged and
// rendered as a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if _, ok := body.(bare); ok || c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, any) {
	// Echo's own errors (router 404, middleware rejections, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, messageResponse{Message: "Validation failed", Details: ve.Details}
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusUnauthorized, errorResponse{Error: "User not found"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, messageResponse{Message: "Invalid credentials"}
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, errorResponse{Error: "too many login attempts"}

	case errors.Is(err, domain.ErrRefreshTokenMissing):
		return http.StatusUnauthorized, bare{}
	case errors.Is(err, domain.ErrRefreshTokenNotFound):
		return http.StatusNotFound, bare{}
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusForbidden, bare{}

	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "access forbidden"}
	case errors.Is(err, domain.ErrGameNotFound):
		return http.StatusNotFound, errorResponse{Error: "game not found"}
	case errors.Is(err, domain.ErrOutOfBounds):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrGameOver), errors.Is(err, domain.ErrGameBusy):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, messageResponse{Message: "Internal server error"}
}
