package ports

import "github.com/gameportal/portal-api/internal/core/domain"

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// TokenIssuer mints signed, time-bounded tokens.
type TokenIssuer interface {
	IssueAccessToken(claims domain.Claims) (string, error)
	IssueRefreshToken(claims domain.Claims) (string, error)
}

// TokenVerifier checks signature and expiry. Every failure is reported as
// domain.ErrTokenInvalid.
type TokenVerifier interface {
	VerifyAccessToken(token string) (domain.Claims, error)
	VerifyRefreshToken(token string) (domain.Claims, error)
}

// TokenManager both issues and verifies tokens.
type TokenManager interface {
	TokenIssuer
	TokenVerifier
}
