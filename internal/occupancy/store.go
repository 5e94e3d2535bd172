// Package occupancy maintains the live view of occupied seat codes per
// showtime: a redis-backed cache fed by a websocket push channel, with a
// polling fallback so the view self-heals when the channel is broken.
package occupancy

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const snapshotTTL = 2 * time.Hour

// RedisStore is the shared occupancy cache. A single writer per showtime (the
// sync channel or the poller) replaces the whole set on every update; readers
// never see a partially merged state.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Replace(ctx context.Context, showtimeID int, codes []string) error {
	pipe := s.client.TxPipeline()

	pipe.Del(ctx, occupancyCodesKey(showtimeID))

	if len(codes) > 0 {
		members := make([]interface{}, len(codes))
		for i, code := range codes {
			members[i] = code
		}

		pipe.SAdd(ctx, occupancyCodesKey(showtimeID), members...)
		pipe.Expire(ctx, occupancyCodesKey(showtimeID), snapshotTTL)
	}

	pipe.Set(ctx, occupancyUpdatedKey(showtimeID), time.Now().UTC().Format(time.RFC3339Nano), snapshotTTL)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to replace occupancy set: %w", err)
	}

	return nil
}

func (s *RedisStore) Snapshot(ctx context.Context, showtimeID int) ([]string, time.Time, error) {
	codes, err := s.client.SMembers(ctx, occupancyCodesKey(showtimeID)).Result()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read occupancy set: %w", err)
	}

	raw, err := s.client.Get(ctx, occupancyUpdatedKey(showtimeID)).Result()
	if err == redis.Nil {
		return codes, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read occupancy timestamp: %w", err)
	}

	updatedAt, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return codes, time.Time{}, nil
	}

	return codes, updatedAt, nil
}

func occupancyCodesKey(showtimeID int) string {
	return fmt.Sprintf("occupancy:codes:%d", showtimeID)
}

func occupancyUpdatedKey(showtimeID int) string {
	return fmt.Sprintf("occupancy:updated:%d", showtimeID)
}
