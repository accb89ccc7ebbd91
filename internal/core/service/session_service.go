package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gameportal/portal-api/internal/core/domain"
	"github.com/gameportal/portal-api/internal/core/ports"
)

// SessionService implements login, registration, logout and access token refresh.
type SessionService struct {
	users   ports.UserRepository
	lookup  ports.IdentifierLookup
	hasher  ports.PasswordHasher
	tokens  ports.TokenManager
	limiter ports.LoginLimiter
	log     zerolog.Logger
}

// NewSessionService wires the session lifecycle. limiter may be nil to
// disable login throttling.
func NewSessionService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenManager,
	limiter ports.LoginLimiter,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		users:   users,
		lookup:  EmailThenUsername(users),
		hasher:  hasher,
		tokens:  tokens,
		limiter: limiter,
		log:     log,
	}
}

// Login authenticates by email or username. A wrong password never touches
// the stored user.
func (s *SessionService) Login(ctx context.Context, identifier, password string) (*domain.Session, error) {
	identifier = strings.TrimSpace(identifier)

	if err := s.allow(ctx, identifier); err != nil {
		return nil, err
	}

	user, err := s.lookup(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, identifier)
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("login: lookup: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.recordFailure(ctx, identifier)
		s.log.Info().Str("user_id", user.ID).Msg("login rejected: bad password")
		return nil, domain.ErrInvalidCredentials
	}

	sess, err := s.startSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	s.resetLimit(ctx, identifier)

	s.log.Info().Str("user_id", user.ID).Msg("login succeeded")
	return sess, nil
}

// Register creates the account and logs it in. A username left blank
// defaults to the email in its stored, lower-cased form.
func (s *SessionService) Register(ctx context.Context, email, password, username string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if username == "" {
		username = strings.ToLower(email)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if domain.IsValidation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	user, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		if domain.IsValidation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("register: create user: %w", err)
	}

	sess, err := s.startSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return sess, nil
}

// Logout revokes the stored refresh token if it belongs to someone. Unknown
// or empty tokens are a no-op.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	user, err := s.users.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("logout: lookup: %w", err)
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, ""); err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("logout: clear token: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("logged out")
	return nil
}

// Refresh mints a new access token from a refresh token that is both stored
// server-side and cryptographically valid. The refresh token is not rotated.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	if refreshToken == "" {
		return nil, domain.ErrRefreshTokenMissing
	}

	user, err := s.users.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("refresh: lookup: %w", err)
	}

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		s.log.Info().Err(err).Str("user_id", user.ID).Msg("refresh rejected")
		return nil, domain.ErrTokenInvalid
	}

	// Claims come from the token, the projection from the stored record.
	access, err := s.tokens.IssueAccessToken(claims)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	return &domain.Session{AccessToken: access, User: user.Public()}, nil
}

func (s *SessionService) startSession(ctx context.Context, user *domain.User) (*domain.Session, error) {
	claims := user.Claims()

	access, err := s.tokens.IssueAccessToken(claims)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(claims)
	if err != nil {
		return nil, err
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	return &domain.Session{AccessToken: access, RefreshToken: refresh, User: user.Public()}, nil
}

// Limiter failures other than the limit itself are logged and ignored.
func (s *SessionService) allow(ctx context.Context, identifier string) error {
	if s.limiter == nil {
		return nil
	}
	err := s.limiter.Allow(ctx, identifier)
	if errors.Is(err, domain.ErrTooManyAttempts) {
		return err
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("login limiter unavailable, allowing attempt")
	}
	return nil
}

func (s *SessionService) recordFailure(ctx context.Context, identifier string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RecordFailure(ctx, identifier); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
}

func (s *SessionService) resetLimit(ctx context.Context, identifier string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Reset(ctx, identifier); err != nil {
		s.log.Warn().Err(err).Msg("failed to reset login limiter")
	}
}
