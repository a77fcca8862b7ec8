package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fleet-auth-server/config"
	"fleet-auth-server/internal/util"

	"github.com/redis/go-redis/v9"
)

const (
	sessionPrefix   = "session:"
	blacklistPrefix = "blacklist:"
	apiKeyPrefix    = "apikey:"
)

// SessionKey : ключ записи сессии
func SessionKey(token string) string {
	return sessionPrefix + token
}

// BlacklistKey : ключ записи отзыва
func BlacklistKey(token string) string {
	return blacklistPrefix + token
}

// APIKeyCacheKey : ключ кэша API ключа (по хэшу ключа)
func APIKeyCacheKey(keyHash string) string {
	return apiKeyPrefix + keyHash
}

// SessionStore : типизированная обёртка над Redis (get/set c TTL/delete/exists).
// Каждый вызов ограничен opTimeout, ошибки сети возвращаются вызывающему.
type SessionStore struct {
	client    redis.Cmdable
	opTimeout time.Duration
}

func NewSessionStore(rdb *config.RedisClient) *SessionStore {
	return NewSessionStoreWithClient(rdb.Client, rdb.OpTimeout)
}

func NewSessionStoreWithClient(client redis.Cmdable, opTimeout time.Duration) *SessionStore {
	if opTimeout <= 0 {
		opTimeout = 2 * time.Second
	}
	return &SessionStore{client: client, opTimeout: opTimeout}
}

// Set : сериализует value в JSON и перезаписывает ключ
func (s *SessionStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("ошибка сериализации значения: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	cmd := s.client.Set(ctx, key, data, ttl)
	if err := cmd.Err(); err != nil {
		return util.LogError("[SessionStore] ошибка сохранения в Redis", err)
	}
	if cmd.Val() != "OK" {
		return fmt.Errorf("неожиданный ответ Redis: %s", cmd.Val())
	}

	return nil
}

// Get : false без ошибки при промахе или битом содержимом
func (s *SessionStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	} else if err != nil {
		return false, util.LogError("[SessionStore] ошибка чтения из Redis", err)
	}

	if err := json.Unmarshal(val, dest); err != nil {
		util.Logger.Warn().Err(err).Msg("[SessionStore] битое значение в кэше, считаем промахом")
		return false, nil
	}
	return true, nil
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return util.LogError("[SessionStore] ошибка удаления из Redis", err)
	}
	return nil
}

func (s *SessionStore) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, util.LogError("[SessionStore] ошибка проверки ключа в Redis", err)
	}
	return n > 0, nil
}
