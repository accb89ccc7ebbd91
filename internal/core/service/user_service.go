package service

import (
	"context"

	"github.com/gameportal/portal-api/internal/core/domain"
	"github.com/gameportal/portal-api/internal/core/ports"
)

type UserService struct {
	users ports.UserRepository
}

func NewUserService(users ports.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Profile(ctx context.Context, id string) (domain.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return domain.PublicUser{}, err
	}
	return user.Public(), nil
}
