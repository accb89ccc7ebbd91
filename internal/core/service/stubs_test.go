package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gameportal/portal-api/internal/core/domain"
)

type stubUserRepo struct {
	mu       sync.Mutex
	users    map[string]*domain.User // by id
	nextID   int
	failWith error // returned by every call when set
	writes   int   // SetRefreshToken calls
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	email := strings.ToLower(user.Email)
	for _, u := range r.users {
		if u.Email == email {
			return nil, domain.NewValidationError("email", "email is already taken")
		}
		if u.Username == user.Username {
			return nil, domain.NewValidationError("username", "username is already taken")
		}
	}
	r.nextID++
	c := cloneUser(user)
	c.ID = fmt.Sprintf("user-%d", r.nextID)
	c.Email = email
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(email)
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *stubUserRepo) FindByRefreshToken(_ context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUserNotFound
	}
	return r.find(func(u *domain.User) bool { return u.RefreshToken == token })
}

func (r *stubUserRepo) SetRefreshToken(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RefreshToken = token
	r.writes++
	return nil
}

func (r *stubUserRepo) byEmail(email string) *domain.User {
	u, _ := r.FindByEmail(context.Background(), email)
	return u
}

type stubLimiter struct {
	blocked  bool
	allowErr error
	failures map[string]int
	resets   int
}

func newStubLimiter() *stubLimiter {
	return &stubLimiter{failures: make(map[string]int)}
}

func (l *stubLimiter) Allow(_ context.Context, _ string) error {
	if l.blocked {
		return domain.ErrTooManyAttempts
	}
	return l.allowErr
}

func (l *stubLimiter) RecordFailure(_ context.Context, id string) error {
	l.failures[id]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, _ string) error {
	l.resets++
	return nil
}

type stubBoardStore struct {
	mu     sync.Mutex
	boards map[string]*domain.Board
}

func newStubBoardStore() *stubBoardStore {
	return &stubBoardStore{boards: make(map[string]*domain.Board)}
}

func (s *stubBoardStore) Save(_ context.Context, b *domain.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards[b.ID] = b
	return nil
}

func (s *stubBoardStore) Load(_ context.Context, id string) (*domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boards[id]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	return b, nil
}

func (s *stubBoardStore) Update(_ context.Context, id string, fn func(*domain.Board) error) (*domain.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boards[id]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	if err := fn(b); err != nil {
		return nil, err
	}
	return b, nil
}
