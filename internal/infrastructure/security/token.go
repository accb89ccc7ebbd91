package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gameportal/portal-api/internal/core/domain"
)

const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

var (
	ErrSecretMissing = errors.New("token secret missing")
	ErrSecretsEqual  = errors.New("access and refresh secrets must differ")
)

// TokenConfig carries the signing secrets and lifetimes. It is built once
// from process configuration and handed to NewJWTManager.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// JWTManager issues and verifies HS256 access and refresh tokens.
type JWTManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

type tokenClaims struct {
	UserID   string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// NewJWTManager validates cfg and returns a ready manager. A missing secret
// is a configuration error; callers should refuse to start.
func NewJWTManager(cfg TokenConfig) (*JWTManager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, ErrSecretMissing
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, ErrSecretsEqual
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	return &JWTManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}, nil
}

// RefreshTTL is the refresh token lifetime, also used as the cookie max age.
func (m *JWTManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

func (m *JWTManager) IssueAccessToken(c domain.Claims) (string, error) {
	return m.issue(c, m.accessSecret, m.accessTTL)
}

func (m *JWTManager) IssueRefreshToken(c domain.Claims) (string, error) {
	return m.issue(c, m.refreshSecret, m.refreshTTL)
}

func (m *JWTManager) VerifyAccessToken(token string) (domain.Claims, error) {
	return m.verify(token, m.accessSecret)
}

func (m *JWTManager) VerifyRefreshToken(token string) (domain.Claims, error) {
	return m.verify(token, m.refreshSecret)
}

func (m *JWTManager) issue(c domain.Claims, secret []byte, ttl time.Duration) (string, error) {
	now := m.now()
	claims := tokenClaims{
		UserID:   c.ID,
		Email:    c.Email,
		Username: c.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *JWTManager) verify(token string, secret []byte) (domain.Claims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("%w: %w", domain.ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return domain.Claims{}, domain.ErrTokenInvalid
	}

	return domain.Claims{ID: claims.UserID, Email: claims.Email, Username: claims.Username}, nil
}
