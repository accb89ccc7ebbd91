package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/gameportal/portal-api/internal/api/handler"
	"github.com/gameportal/portal-api/internal/core/domain"
	"github.com/gameportal/portal-api/internal/infrastructure/security"
)

var testClaims = domain.Claims{ID: "user-1", Email: "alice@example.com", Username: "alice"}

func newManager(t *testing.T) *security.JWTManager {
	t.Helper()
	m, err := security.NewJWTManager(security.TokenConfig{AccessSecret: "access", RefreshSecret: "refresh"})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func runAuth(t *testing.T, m *security.JWTManager, header string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Auth(m)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	m := newManager(t)
	token, err := m.IssueAccessToken(testClaims)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := Auth(m)(func(c echo.Context) error {
		called = true
		got, ok := c.Get(handler.ClaimsKey).(domain.Claims)
		if !ok || got != testClaims {
			t.Fatalf("claims not set: %+v", c.Get(handler.ClaimsKey))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	m := newManager(t)
	refresh, err := m.IssueRefreshToken(testClaims)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	cases := map[string]string{
		"missing header":  "",
		"wrong scheme":    "Token abc",
		"empty bearer":    "Bearer ",
		"garbage token":   "Bearer not-a-token",
		"refresh as auth": "Bearer " + refresh,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			if rec := runAuth(t, m, header); rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}
