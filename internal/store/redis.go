package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces build records in a shared Redis.
const DefaultKeyPrefix = "garden:build-version"

// RedisStore keeps build versions in Redis so several checkouts can share them.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

var _ VersionStore = (*RedisStore)(nil)

// NewRedisStore connects to url and verifies the connection.
func NewRedisStore(url, keyPrefix string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}, nil
}

func (s *RedisStore) key(moduleName string) string {
	return s.keyPrefix + ":" + moduleName
}

func (s *RedisStore) GetBuildVersion(ctx context.Context, moduleName string) (BuildRecord, bool, error) {
	data, err := s.client.Get(ctx, s.key(moduleName)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return BuildRecord{}, false, nil
		}
		return BuildRecord{}, false, fmt.Errorf("failed to read build version of %s: %w", moduleName, err)
	}

	var rec BuildRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return BuildRecord{}, false, fmt.Errorf("failed to unmarshal build record of %s: %w", moduleName, err)
	}
	return rec, true, nil
}

func (s *RedisStore) SetBuildVersion(ctx context.Context, moduleName string, rec BuildRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal build record: %w", err)
	}
	return s.client.Set(ctx, s.key(moduleName), data, 0).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
