package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gameportal/portal-api/internal/core/domain"
)

type stubSessionService struct {
	loginFn    func(ctx context.Context, identifier, password string) (*domain.Session, error)
	registerFn func(ctx context.Context, email, password, username string) (*domain.Session, error)
	logoutFn   func(ctx context.Context, token string) error
	refreshFn  func(ctx context.Context, token string) (*domain.Session, error)
}

func (s *stubSessionService) Login(ctx context.Context, identifier, password string) (*domain.Session, error) {
	return s.loginFn(ctx, identifier, password)
}

func (s *stubSessionService) Register(ctx context.Context, email, password, username string) (*domain.Session, error) {
	return s.registerFn(ctx, email, password, username)
}

func (s *stubSessionService) Logout(ctx context.Context, token string) error {
	return s.logoutFn(ctx, token)
}

func (s *stubSessionService) Refresh(ctx context.Context, token string) (*domain.Session, error) {
	return s.refreshFn(ctx, token)
}

var testCookies = CookieOptions{MaxAge: 7 * 24 * time.Hour}

var alice = domain.PublicUser{ID: "u1", Email: "alice@example.com", Username: "alice"}

func newAuthContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == RefreshCookieName {
			return ck
		}
	}
	t.Fatalf("refresh cookie not set")
	return nil
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubSessionService{
		loginFn: func(ctx context.Context, identifier, password string) (*domain.Session, error) {
			if identifier != "alice@example.com" || password != "correct-pw" {
				t.Fatalf("unexpected args: %s %s", identifier, password)
			}
			return &domain.Session{AccessToken: "access", RefreshToken: "refresh", User: alice}, nil
		},
	}
	h := NewAuthHandler(stub, testCookies, zerolog.Nop())
	c, rec := newAuthContext(http.MethodPost, "/login", `{"emailOrUsername":"alice@example.com","password":"correct-pw"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] != "Login successful" || resp["accessToken"] != "access" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["email"] != "alice@example.com" || user["id"] != "u1" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
	if strings.Contains(rec.Body.String(), "refresh") {
		t.Fatalf("refresh token leaked into body: %s", rec.Body.String())
	}

	ck := refreshCookie(t, rec)
	if ck.Value != "refresh" || !ck.HttpOnly || ck.MaxAge != 604800 || ck.Path != "/" {
		t.Fatalf("unexpected cookie: %+v", ck)
	}
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	for _, want := range []error{domain.ErrUserNotFound, domain.ErrInvalidCredentials, domain.ErrTooManyAttempts} {
		stub := &stubSessionService{
			loginFn: func(ctx context.Context, identifier, password string) (*domain.Session, error) {
				return nil, want
			},
		}
		h := NewAuthHandler(stub, testCookies, zerolog.Nop())
		c, rec := newAuthContext(http.MethodPost, "/login", `{"emailOrUsername":"alice","password":"bad"}`)

		if err := h.Login(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
		if len(rec.Result().Cookies()) != 0 {
			t.Fatalf("cookie set on failure")
		}
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	stub := &stubSessionService{
		loginFn: func(ctx context.Context, identifier, password string) (*domain.Session, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, testCookies, zerolog.Nop())

	for _, body := range []string{"{", `{"password":"x"}`, `{"emailOrUsername":"a"}`,
		`{"emailOrUsername":"a","password":"` + strings.Repeat("ą", 37) + `"}`} {
		c, _ := newAuthContext(http.MethodPost, "/login", body)
		if err := h.Login(c); !domain.IsValidation(err) {
			t.Fatalf("body %q: expected ValidationError, got %v", body, err)
		}
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubSessionService{
		registerFn: func(ctx context.Context, email, password, username string) (*domain.Session, error) {
			if email != "bob@example.com" || password != "pw" || username != "" {
				t.Fatalf("unexpected args: %s %s %s", email, password, username)
			}
			return &domain.Session{AccessToken: "access", RefreshToken: "refresh", User: alice}, nil
		},
	}
	h := NewAuthHandler(stub, testCookies, zerolog.Nop())
	c, rec := newAuthContext(http.MethodPost, "/register", `{"email":"bob@example.com","password":"pw"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["accessToken"] != "access" {
		t.Fatalf("expected access token, got %+v", resp)
	}
	if _, ok := resp["user"]; ok {
		t.Fatalf("register must not return the user: %+v", resp)
	}
	if ck := refreshCookie(t, rec); ck.Value != "refresh" {
		t.Fatalf("unexpected cookie value %q", ck.Value)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	stub := &stubSessionService{
		registerFn: func(ctx context.Context, email, password, username string) (*domain.Session, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, testCookies, zerolog.Nop())

	cases := []struct {
		name, field, body string
	}{
		{"bad email", "email", `{"email":"not-an-email","password":"pw"}`},
		{"long ascii password", "password", `{"email":"a@example.com","password":"` + strings.Repeat("x", 73) + `"}`},
		// 40 runes but 80 bytes: over bcrypt's input limit.
		{"long multibyte password", "password", `{"email":"a@example.com","password":"` + strings.Repeat("ą", 40) + `"}`},
	}
	for _, tc := range cases {
		c, _ := newAuthContext(http.MethodPost, "/register", tc.body)
		var ve *domain.ValidationError
		if err := h.Register(c); !errors.As(err, &ve) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
		if _, ok := ve.Details[tc.field]; !ok {
			t.Fatalf("%s: expected %s detail, got %+v", tc.name, tc.field, ve.Details)
		}
	}
}

func TestAuthHandler_Register_PasswordLimitCountsBytes(t *testing.T) {
	called := false
	stub := &stubSessionService{
		registerFn: func(ctx context.Context, email, password, username string) (*domain.Session, error) {
			called = true
			return &domain.Session{AccessToken: "access", RefreshToken: "refresh"}, nil
		},
	}
	h := NewAuthHandler(stub, testCookies, zerolog.Nop())

	// 36 runes, exactly 72 bytes.
	c, rec := newAuthContext(http.MethodPost, "/register", `{"email":"a@example.com","password":"`+strings.Repeat("ą", 36)+`"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected 72-byte password to reach the service, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_StoreValidation(t *testing.T) {
	stub := &stubSessionService{
		registerFn: func(ctx context.Context, email, password, username string) (*domain.Session, error) {
			return nil, domain.NewValidationError("email", "email is already taken")
		},
	}
	h := NewAuthHandler(stub, testCookies, zerolog.Nop())
	c, _ := newAuthContext(http.MethodPost, "/register", `{"email":"a@example.com","password":"pw"}`)

	if err := h.Register(c); !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	var revoked []string
	stub := &stubSessionService{
		logoutFn: func(ctx context.Context, token string) error {
			revoked = append(revoked, token)
			return errors.New("store down")
		},
	}
	h := NewAuthHandler(stub, testCookies, zerolog.Nop())

	t.Run("without cookie", func(t *testing.T) {
		c, rec := newAuthContext(http.MethodPost, "/logout", "")
		if err := h.Logout(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if len(revoked) != 0 {
			t.Fatalf("service called without cookie")
		}
	})

	t.Run("with cookie, store failure still 204", func(t *testing.T) {
		c, rec := newAuthContext(http.MethodPost, "/logout", "")
		c.Request().AddCookie(&http.Cookie{Name: RefreshCookieName, Value: "tok"})

		if err := h.Logout(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if len(revoked) != 1 || revoked[0] != "tok" {
			t.Fatalf("unexpected revocations: %v", revoked)
		}
		if ck := refreshCookie(t, rec); ck.Value != "" || ck.MaxAge >= 0 {
			t.Fatalf("cookie not cleared: %+v", ck)
		}
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	stub := &stubSessionService{
		refreshFn: func(ctx context.Context, token string) (*domain.Session, error) {
			switch token {
			case "":
				return nil, domain.ErrRefreshTokenMissing
			case "good":
				return &domain.Session{AccessToken: "new-access", User: alice}, nil
			default:
				return nil, domain.ErrRefreshTokenNotFound
			}
		},
	}
	h := NewAuthHandler(stub, testCookies, zerolog.Nop())

	c, _ := newAuthContext(http.MethodPost, "/refresh", "")
	if err := h.Refresh(c); !errors.Is(err, domain.ErrRefreshTokenMissing) {
		t.Fatalf("expected ErrRefreshTokenMissing, got %v", err)
	}

	c, _ = newAuthContext(http.MethodPost, "/refresh", "")
	c.Request().AddCookie(&http.Cookie{Name: RefreshCookieName, Value: "stale"})
	if err := h.Refresh(c); !errors.Is(err, domain.ErrRefreshTokenNotFound) {
		t.Fatalf("expected ErrRefreshTokenNotFound, got %v", err)
	}

	c, rec := newAuthContext(http.MethodPost, "/refresh", "")
	c.Request().AddCookie(&http.Cookie{Name: RefreshCookieName, Value: "good"})
	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp refreshResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.AccessToken != "new-access" || resp.User != alice {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("refresh must not rotate the cookie")
	}
}
