package ports

import (
	"context"
	"time"
)

// SessionStore : Redis слой для сессий, blacklist и кэша API ключей
type SessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string, dest any) (bool, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
