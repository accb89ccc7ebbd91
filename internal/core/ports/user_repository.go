package ports

import (
	"context"

	"github.com/gameportal/portal-api/internal/core/domain"
)

// UserRepository is the credential store. Lookups return domain.ErrUserNotFound
// when nothing matches; Create returns a *domain.ValidationError when a unique
// field is already taken.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByRefreshToken(ctx context.Context, token string) (*domain.User, error)
	// SetRefreshToken overwrites the stored refresh token; an empty token logs the user out.
	SetRefreshToken(ctx context.Context, userID, token string) error
}

// IdentifierLookup resolves a login identifier (email or username) to a user.
type IdentifierLookup func(ctx context.Context, identifier string) (*domain.User, error)
