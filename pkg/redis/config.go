package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type RedisConfigModel struct {
	Host     string
	Port     string
	Username string
	Password string
}

// RedisClient connects and pings with a bounded number of attempts.
func RedisClient(config RedisConfigModel) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Host, config.Port),
		Username:     config.Username,
		Password:     config.Password,
		DB:           0,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const maxRetries = 5
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = client.Ping(ctx).Err(); err == nil {
			log.Info().Str("addr", client.Options().Addr).Msg("Connected to Redis")
			return client, nil
		}
		log.Warn().Err(err).Int("attempt", i+1).Int("max_attempts", maxRetries).Msg("Failed to connect to Redis")
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("failed to connect to Redis after %d attempts: %w", maxRetries, err)
}
