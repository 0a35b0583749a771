package saga

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "saga:transfer:"

// RedisStateStore persists coordinator state in Redis so in-flight transfers
// survive a process restart. One JSON value per transfer id.
type RedisStateStore struct {
	client redis.Cmdable
}

func NewRedisStateStore(client redis.Cmdable) *RedisStateStore {
	return &RedisStateStore{client: client}
}

func redisKey(transferID string) string { return redisKeyPrefix + transferID }

func (s *RedisStateStore) Get(ctx context.Context, transferID string) (*State, error) {
	raw, err := s.client.Get(ctx, redisKey(transferID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get saga state %s: %w", transferID, err)
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode saga state %s: %w", transferID, err)
	}
	return &state, nil
}

func (s *RedisStateStore) Put(ctx context.Context, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode saga state %s: %w", state.TransferID, err)
	}
	if err := s.client.Set(ctx, redisKey(state.TransferID), raw, 0).Err(); err != nil {
		return fmt.Errorf("put saga state %s: %w", state.TransferID, err)
	}
	return nil
}

func (s *RedisStateStore) Delete(ctx context.Context, transferID string) error {
	if err := s.client.Del(ctx, redisKey(transferID)).Err(); err != nil {
		return fmt.Errorf("delete saga state %s: %w", transferID, err)
	}
	return nil
}

func (s *RedisStateStore) Count(ctx context.Context) (int64, error) {
	var count int64
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, redisKeyPrefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("count saga states: %w", err)
		}
		count += int64(len(keys))
		if next == 0 {
			return count, nil
		}
		cursor = next
	}
}
