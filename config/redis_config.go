package config

import (
	"context"
	"fmt"
	"time"

	"fleet-auth-server/internal/util"

	"github.com/redis/go-redis/v9"
)

// RedisClient : общий долгоживущий клиент, переподключается сам
type RedisClient struct {
	Client    *redis.Client
	OpTimeout time.Duration
}

func NewRedisClient(cfg *RedisConfig) (*RedisClient, error) {
	client := redis.NewClient(redisOptions(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout+cfg.ReadTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ошибка пинга Redis %s: %w", cfg.Addr, err)
	}

	util.Logger.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("подключение к Redis успешно выполнено")
	return &RedisClient{Client: client, OpTimeout: cfg.OpTimeout}, nil
}

func redisOptions(cfg *RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.PoolSize,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
	}
}

func (r *RedisClient) Close() error {
	if err := r.Client.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия соединения с Redis: %w", err)
	}
	return nil
}
