package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gameportal/portal-api/internal/core/domain"
)

// ClaimsKey is the echo context key the Auth middleware stores claims under.
const ClaimsKey = "claims"

// ctxClaims returns the claims injected by the Auth middleware. A missing or
// empty identity means the route was mounted without the middleware.
func ctxClaims(c echo.Context) (domain.Claims, error) {
	claims, ok := c.Get(ClaimsKey).(domain.Claims)
	if !ok || claims.ID == "" {
		return domain.Claims{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
