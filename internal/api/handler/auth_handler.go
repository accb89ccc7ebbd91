package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gameportal/portal-api/internal/api/metrics"
	"github.com/gameportal/portal-api/internal/core/domain"
	"github.com/gameportal/portal-api/internal/core/ports"
)

type AuthHandler struct {
	sessions ports.SessionService
	cookies  CookieOptions
	log      zerolog.Logger
}

func NewAuthHandler(sessions ports.SessionService, cookies CookieOptions, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, cookies: cookies, log: log}
}

type loginRequest struct {
	EmailOrUsername string `json:"emailOrUsername" validate:"required,max=254"`
	Password        string `json:"password" validate:"required,maxbytes=72"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=1,maxbytes=72"`
	Username string `json:"username" validate:"omitempty,max=64"`
}

type loginResponse struct {
	Message     string             `json:"message"`
	AccessToken string             `json:"accessToken"`
	User        *domain.PublicUser `json:"user,omitempty"`
}

type refreshResponse struct {
	AccessToken string            `json:"accessToken"`
	User        domain.PublicUser `json:"user"`
}

const loginMessage = "Login successful"

// Login authenticates by email or username and starts a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_request").Inc()
		return invalidPayload()
	}
	if err := c.Validate(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_request").Inc()
		return err
	}

	sess, err := h.sessions.Login(c.Request().Context(), req.EmailOrUsername, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()

	h.cookies.setRefresh(c, sess.RefreshToken)
	return c.JSON(http.StatusOK, loginResponse{
		Message:     loginMessage,
		AccessToken: sess.AccessToken,
		User:        &sess.User,
	})
}

// Register creates an account and starts a session.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]any
// @Failure      500   {object}  map[string]string
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid_request").Inc()
		return invalidPayload()
	}
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid_request").Inc()
		return err
	}

	sess, err := h.sessions.Register(c.Request().Context(), req.Email, req.Password, req.Username)
	if err != nil {
		result := "error"
		if domain.IsValidation(err) {
			result = "invalid_request"
		}
		metrics.RegistrationsTotal.WithLabelValues(result).Inc()
		return err
	}
	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()

	h.cookies.setRefresh(c, sess.RefreshToken)
	return c.JSON(http.StatusOK, loginResponse{
		Message:     loginMessage,
		AccessToken: sess.AccessToken,
	})
}

// Logout revokes the refresh token carried by the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	metrics.LogoutsTotal.Inc()

	token := refreshTokenFromCookie(c)
	if token == "" {
		return c.NoContent(http.StatusNoContent)
	}

	if err := h.sessions.Logout(c.Request().Context(), token); err != nil {
		h.log.Error().Err(err).Str("request_id", requestID(c)).Msg("logout: revoke refresh token")
	}

	h.cookies.clearRefresh(c)
	return c.NoContent(http.StatusNoContent)
}

// Refresh mints a new access token from the refresh cookie.
//
// @Summary      Refresh access token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  refreshResponse
// @Failure      401
// @Failure      403
// @Failure      404
// @Router       /refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	sess, err := h.sessions.Refresh(c.Request().Context(), refreshTokenFromCookie(c))
	if err != nil {
		metrics.RefreshesTotal.WithLabelValues(refreshResult(err)).Inc()
		return err
	}
	metrics.RefreshesTotal.WithLabelValues("ok").Inc()

	return c.JSON(http.StatusOK, refreshResponse{AccessToken: sess.AccessToken, User: sess.User})
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	default:
		return "error"
	}
}

func refreshResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrRefreshTokenMissing):
		return "missing"
	case errors.Is(err, domain.ErrRefreshTokenNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrTokenInvalid):
		return "invalid"
	default:
		return "error"
	}
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
