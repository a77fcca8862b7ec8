package ports

import (
	"context"
	"time"

	"fleet-auth-server/internal/model"
)

// APIKeyRepository : SQL слой, источник истины для API ключей
type APIKeyRepository interface {
	Create(ctx context.Context, key *model.APIKey) (*model.APIKey, error)
	FindByHash(ctx context.Context, keyHash string) (*model.APIKey, error)
	TouchLastUsed(ctx context.Context, id string, usedAt time.Time) error
	// companyID == nil снимает ограничение по компании (только для администратора)
	Deactivate(ctx context.Context, id string, companyID *int64) (string, error)
}

type APIKeyValidator interface {
	Validate(ctx context.Context, rawKey string) (*model.APIKey, model.APIKeyStatus)
}

type APIKeyService interface {
	APIKeyValidator
	Create(ctx context.Context, name string, companyID int64, permissions []string, expiresAt *time.Time) (*model.APIKey, string, error)
	Revoke(ctx context.Context, id string, companyID *int64) error
}
