package ports

import (
	"context"

	"github.com/gameportal/portal-api/internal/core/domain"
)

// BoardStore persists statki boards.
type BoardStore interface {
	Save(ctx context.Context, board *domain.Board) error
	// Load returns domain.ErrGameNotFound for unknown or expired ids.
	Load(ctx context.Context, id string) (*domain.Board, error)
	// Update loads the board, applies fn and saves it atomically. When fn
	// returns an error nothing is written.
	Update(ctx context.Context, id string, fn func(*domain.Board) error) (*domain.Board, error)
}

// AttackResult is returned after a shot.
type AttackResult struct {
	Outcome  domain.ShotOutcome
	Finished bool
	Board    *domain.Board
}

// StatkiService runs single-player statki games.
type StatkiService interface {
	NewGame(ctx context.Context, ownerID string) (*domain.Board, error)
	Game(ctx context.Context, ownerID, gameID string) (*domain.Board, error)
	Attack(ctx context.Context, ownerID, gameID string, x, y int) (*AttackResult, error)
}
