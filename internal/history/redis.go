package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists runs in a Redis sorted set scored by timestamp.
type RedisStore struct {
	client  *redis.Client
	key     string
	maxRuns int
}

// NewRedisStore creates a new Redis store.
// Returns error if connection fails.
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisStore{
		client:  client,
		key:     "termeval:runs",
		maxRuns: 100,
	}, nil
}

// Save implements Store.
func (rs *RedisStore) Save(ctx context.Context, run Run) error {
	member, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encoding run: %w", err)
	}

	pipe := rs.client.TxPipeline()
	pipe.ZAdd(ctx, rs.key, redis.Z{
		Score:  float64(run.Timestamp.UnixNano()),
		Member: string(member),
	})
	// Keep only the newest maxRuns members.
	pipe.ZRemRangeByRank(ctx, rs.key, 0, int64(-rs.maxRuns-1))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// List implements Store.
func (rs *RedisStore) List(ctx context.Context, limit int) ([]Run, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	members, err := rs.client.ZRevRange(ctx, rs.key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	runs := make([]Run, 0, len(members))
	for _, m := range members {
		var run Run
		if err := json.Unmarshal([]byte(m), &run); err != nil {
			// Skip invalid entries
			continue
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// Clear deletes every recorded run.
func (rs *RedisStore) Clear(ctx context.Context) error {
	if err := rs.client.Del(ctx, rs.key).Err(); err != nil {
		return fmt.Errorf("clearing runs: %w", err)
	}
	return nil
}

// SetKey changes the sorted set key.
func (rs *RedisStore) SetKey(key string) {
	rs.key = key
}

// SetMaxRuns sets how many runs are retained.
func (rs *RedisStore) SetMaxRuns(n int) {
	if n > 0 {
		rs.maxRuns = n
	}
}

// Close closes the Redis connection.
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
