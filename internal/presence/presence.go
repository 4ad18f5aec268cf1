package presence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultTTL = 90 * time.Second

// Store keeps online/offline state in Redis with a TTL so a crashed client
// eventually reads as offline even if it never disconnected cleanly.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, ttl: defaultTTL}
}

func key(userID uuid.UUID) string {
	return "presence:" + userID.String()
}

func (s *Store) SetOnline(ctx context.Context, userID uuid.UUID) error {
	return s.rdb.Set(ctx, key(userID), "online", s.ttl).Err()
}

// Refresh extends the TTL for a still-connected user. Called on ping.
func (s *Store) Refresh(ctx context.Context, userID uuid.UUID) error {
	return s.rdb.Expire(ctx, key(userID), s.ttl).Err()
}

func (s *Store) SetOffline(ctx context.Context, userID uuid.UUID) error {
	return s.rdb.Del(ctx, key(userID)).Err()
}

// Online reports which of the given users are currently online, in a single
// round trip.
func (s *Store) Online(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}

	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		result[ids[i]] = v != nil
	}
	return result, nil
}
