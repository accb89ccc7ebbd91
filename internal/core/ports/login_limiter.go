package ports

import "context"

// LoginLimiter throttles failed login attempts per identifier.
type LoginLimiter interface {
	// Allow returns domain.ErrTooManyAttempts once the failure budget is spent.
	Allow(ctx context.Context, identifier string) error
	RecordFailure(ctx context.Context, identifier string) error
	Reset(ctx context.Context, identifier string) error
}
