package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gameportal/portal-api/internal/api/handler"
	"github.com/gameportal/portal-api/internal/core/domain"
)

// RequireOwner only lets a request through when the path parameter equals
// the authenticated user's id. Mount it after Auth.
func RequireOwner(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(handler.ClaimsKey).(domain.Claims)
			if !ok || claims.ID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if c.Param(param) != claims.ID {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
