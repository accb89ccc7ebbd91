package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gameportal/portal-api/internal/core/domain"
)

const (
	DefaultMaxLoginAttempts = 10
	DefaultLoginWindow      = 15 * time.Minute
)

// LoginLimiter counts failed logins per identifier in a fixed window.
// Key format: login:fail:<normalised identifier>
type LoginLimiter struct {
	client      redis.UniversalClient
	maxAttempts int
	window      time.Duration
}

// NewLoginLimiter creates a limiter. Non-positive values fall back to the defaults.
func NewLoginLimiter(client redis.UniversalClient, maxAttempts int, window time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxLoginAttempts
	}
	if window <= 0 {
		window = DefaultLoginWindow
	}
	return &LoginLimiter{client: client, maxAttempts: maxAttempts, window: window}
}

// Allow reports domain.ErrTooManyAttempts once maxAttempts failures were
// recorded inside the current window.
func (l *LoginLimiter) Allow(ctx context.Context, identifier string) error {
	n, err := l.client.Get(ctx, l.key(identifier)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("login limiter get: %w", err)
	}
	if n >= l.maxAttempts {
		return domain.ErrTooManyAttempts
	}
	return nil
}

// RecordFailure bumps the counter; the window starts at the first failure.
// INCR and EXPIRE NX share one MULTI so a counter never lives without a TTL.
func (l *LoginLimiter) RecordFailure(ctx context.Context, identifier string) error {
	key := l.key(identifier)
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("login limiter record: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, identifier string) error {
	if err := l.client.Del(ctx, l.key(identifier)).Err(); err != nil {
		return fmt.Errorf("login limiter reset: %w", err)
	}
	return nil
}

func (l *LoginLimiter) key(identifier string) string {
	return "login:fail:" + strings.ToLower(strings.TrimSpace(identifier))
}
