package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gameportal/portal-api/internal/core/domain"
)

const (
	DefaultBoardTTL = 24 * time.Hour
	maxTxRetries    = 5
)

// BoardStore keeps statki boards as JSON under statki:board:<id>.
// Every write refreshes the TTL, so idle games expire.
type BoardStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewBoardStore(client redis.UniversalClient, ttl time.Duration) *BoardStore {
	if ttl <= 0 {
		ttl = DefaultBoardTTL
	}
	return &BoardStore{client: client, ttl: ttl}
}

func (s *BoardStore) Save(ctx context.Context, board *domain.Board) error {
	raw, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("encode board: %w", err)
	}
	if err := s.client.Set(ctx, s.key(board.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	return nil
}

func (s *BoardStore) Load(ctx context.Context, id string) (*domain.Board, error) {
	return s.load(ctx, s.client, id)
}

// Update applies fn under WATCH so concurrent shots at one board serialise.
// A conflicting write makes the transaction fail and the update is retried.
func (s *BoardStore) Update(ctx context.Context, id string, fn func(*domain.Board) error) (*domain.Board, error) {
	key := s.key(id)
	var updated *domain.Board

	txf := func(tx *redis.Tx) error {
		board, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(board); err != nil {
			return err
		}
		raw, err := json.Marshal(board)
		if err != nil {
			return fmt.Errorf("encode board: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, s.ttl)
			return nil
		})
		if err == nil {
			updated = board
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, domain.ErrGameBusy
}

// getter is satisfied by both the client and a WATCH transaction.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *BoardStore) load(ctx context.Context, c getter, id string) (*domain.Board, error) {
	raw, err := c.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrGameNotFound
		}
		return nil, fmt.Errorf("load board: %w", err)
	}

	var board domain.Board
	if err := json.Unmarshal(raw, &board); err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	return &board, nil
}

func (s *BoardStore) key(id string) string {
	return "statki:board:" + id
}
