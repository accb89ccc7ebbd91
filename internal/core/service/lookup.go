package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gameportal/portal-api/internal/core/domain"
	"github.com/gameportal/portal-api/internal/core/ports"
)

// EmailThenUsername returns a lookup that matches the identifier against the
// email field first and falls back to the username field.
func EmailThenUsername(repo ports.UserRepository) ports.IdentifierLookup {
	return func(ctx context.Context, identifier string) (*domain.User, error) {
		identifier = strings.TrimSpace(identifier)
		if identifier == "" {
			return nil, domain.ErrUserNotFound
		}

		user, err := repo.FindByEmail(ctx, identifier)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return repo.FindByUsername(ctx, identifier)
	}
}
