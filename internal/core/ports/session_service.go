package ports

import (
	"context"

	"github.com/gameportal/portal-api/internal/core/domain"
)

// SessionService drives the session lifecycle:
// Anonymous -> Authenticated via Login or Register,
// RefreshPending -> Authenticated via Refresh, any state -> Anonymous via Logout.
type SessionService interface {
	Login(ctx context.Context, identifier, password string) (*domain.Session, error)
	Register(ctx context.Context, email, password, username string) (*domain.Session, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*domain.Session, error)
}

// UserService exposes read access to user profiles.
type UserService interface {
	Profile(ctx context.Context, id string) (domain.PublicUser, error)
}
