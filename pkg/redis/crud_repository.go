package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrKeyNotFound is returned by Get for a missing or expired key.
var ErrKeyNotFound = errors.New("redis key does not exist")

type IRedisRepositories interface {
	Set(ctx context.Context, key string, data []byte, expiration time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, keys ...string) error
}

type RedisRepositories struct {
	Client *redis.Client
}

func NewRedisRepositories(client *redis.Client) IRedisRepositories {
	log.Info().Msg("Initialized Repository : Redis")
	return &RedisRepositories{
		Client: client,
	}
}

func (r *RedisRepositories) Set(ctx context.Context, key string, data []byte, expiration time.Duration) error {
	if err := r.Client.Set(ctx, key, data, expiration).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Error setting Redis key")
		return err
	}
	return nil
}

func (r *RedisRepositories) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	} else if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Error getting Redis key")
		return nil, err
	}
	return result, nil
}

func (r *RedisRepositories) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.Client.Del(ctx, keys...).Err(); err != nil {
		log.Error().Err(err).Strs("keys", keys).Msg("Error deleting Redis keys")
		return err
	}
	return nil
}
