package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// positionTTL bounds how long an idle reading position survives. Positions
// are refreshed on every update, so active readers never expire.
const positionTTL = 90 * 24 * time.Hour

// RedisPositionStore keeps positions in Redis so they survive restarts and
// are shared across instances.
type RedisPositionStore struct {
	client *redis.Client
}

func NewRedisPositionStore(redisURL string) (*RedisPositionStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisPositionStore{client: client}, nil
}

func (s *RedisPositionStore) GetPosition(ctx context.Context, userID, bookID uuid.UUID) (int64, error) {
	position, err := s.client.Get(ctx, positionKey(userID, bookID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return position, nil
}

func (s *RedisPositionStore) SetPosition(ctx context.Context, userID, bookID uuid.UUID, position int64) error {
	return s.client.Set(ctx, positionKey(userID, bookID), position, positionTTL).Err()
}

func (s *RedisPositionStore) Close() error {
	return s.client.Close()
}
