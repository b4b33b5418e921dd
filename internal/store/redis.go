package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries under StorageKey:<profile>
type RedisStore struct {
	client *redis.Client
}

// OpenRedis connects and pings the server
func OpenRedis(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

func redisKey(profile string) string {
	return StorageKey + ":" + profile
}

// Load returns the stored entry
func (s *RedisStore) Load(ctx context.Context, profile string) ([]byte, error) {
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, redisKey(profile)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

// Save overwrites the entry without expiry
func (s *RedisStore) Save(ctx context.Context, profile string, data []byte) error {
	if err := ValidateProfile(profile); err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKey(profile), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes the entry
func (s *RedisStore) Delete(ctx context.Context, profile string) error {
	if err := ValidateProfile(profile); err != nil {
		return err
	}
	n, err := s.client.Del(ctx, redisKey(profile)).Result()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
