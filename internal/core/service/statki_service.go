package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gameportal/portal-api/internal/core/domain"
	"github.com/gameportal/portal-api/internal/core/ports"
)

// StatkiService runs single-player statki games against a random fleet.
type StatkiService struct {
	store  ports.BoardStore
	log    zerolog.Logger
	now    func() time.Time
	newRNG func() *rand.Rand
}

func NewStatkiService(store ports.BoardStore, log zerolog.Logger) *StatkiService {
	return &StatkiService{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
}

// NewGame places a fresh fleet and stores the board.
func (s *StatkiService) NewGame(ctx context.Context, ownerID string) (*domain.Board, error) {
	board := domain.NewBoard(uuid.NewString(), ownerID, s.now())
	if err := board.PlaceFleet(domain.Fleet, s.newRNG()); err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	if err := s.store.Save(ctx, board); err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}

	s.log.Info().Str("game_id", board.ID).Str("user_id", ownerID).Msg("statki game started")
	return board, nil
}

// Game returns the caller's board. Boards owned by someone else are reported
// as not found.
func (s *StatkiService) Game(ctx context.Context, ownerID, gameID string) (*domain.Board, error) {
	board, err := s.store.Load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if board.OwnerID != ownerID {
		return nil, domain.ErrGameNotFound
	}
	return board, nil
}

// Attack fires one shot at (x, y).
func (s *StatkiService) Attack(ctx context.Context, ownerID, gameID string, x, y int) (*ports.AttackResult, error) {
	var outcome domain.ShotOutcome

	board, err := s.store.Update(ctx, gameID, func(b *domain.Board) error {
		if b.OwnerID != ownerID {
			return domain.ErrGameNotFound
		}
		var err error
		if outcome, err = b.Attack(x, y); err != nil {
			return err
		}
		b.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if board.Finished() && outcome == domain.ShotSunk {
		s.log.Info().Str("game_id", gameID).Int("shots", board.Shots).Msg("statki game won")
	}
	return &ports.AttackResult{Outcome: outcome, Finished: board.Finished(), Board: board}, nil
}
