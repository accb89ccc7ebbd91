package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// RefreshCookieName is the cookie carrying the refresh token.
const RefreshCookieName = "refreshToken"

// CookieOptions controls the refresh token cookie.
type CookieOptions struct {
	Secure bool
	Domain string
	MaxAge time.Duration
}

func (o CookieOptions) setRefresh(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		Domain:   o.Domain,
		MaxAge:   int(o.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (o CookieOptions) clearRefresh(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		Domain:   o.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func refreshTokenFromCookie(c echo.Context) string {
	ck, err := c.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(ck.Value)
}
