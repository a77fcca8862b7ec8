package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleet-auth-server/config"
	"fleet-auth-server/internal/model"
	"fleet-auth-server/internal/util"

	"github.com/jmoiron/sqlx"
)

type APIKeyRepository struct {
	*config.Database
}

func NewAPIKeyRepository(database *config.Database) *APIKeyRepository {
	return &APIKeyRepository{database}
}

// Create : сохраняет новый API ключ (только хэш)
func (r *APIKeyRepository) Create(ctx context.Context, key *model.APIKey) (*model.APIKey, error) {
	query := `
	INSERT INTO api_keys (id, name, key_hash, permissions, company_id, is_active, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at
	`

	created := *key
	err := r.DB.QueryRowxContext(ctx, query,
		key.ID,
		key.Name,
		key.KeyHash,
		key.Permissions,
		key.CompanyID,
		key.IsActive,
		key.ExpiresAt,
	).Scan(&created.CreatedAt)
	if err != nil {
		return nil, util.LogError("[APIKeyRepo] ошибка вставки API ключа", err)
	}

	return &created, nil
}

// FindByHash : ищет ключ по SHA-256 хэшу, активность и срок проверяет сервис
func (r *APIKeyRepository) FindByHash(ctx context.Context, keyHash string) (*model.APIKey, error) {
	query := `
	SELECT id, name, key_hash, permissions, company_id, is_active, expires_at, last_used_at, created_at
	FROM api_keys
	WHERE key_hash = $1
	`

	var key model.APIKey
	err := sqlx.GetContext(ctx, r.DB, &key, query, keyHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, util.LogError("[APIKeyRepo] ошибка поиска API ключа", err)
	}

	return &key, nil
}

// TouchLastUsed : обновляет last_used_at
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id string, usedAt time.Time) error {
	query := `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`

	if _, err := r.DB.ExecContext(ctx, query, id, usedAt); err != nil {
		return util.LogError("[APIKeyRepo] не удалось обновить last_used_at", err)
	}
	return nil
}

// Deactivate : выключает ключ и возвращает его хэш для инвалидации кэша.
// Ключ чужой компании не отличается от несуществующего.
func (r *APIKeyRepository) Deactivate(ctx context.Context, id string, companyID *int64) (string, error) {
	query := `
	UPDATE api_keys SET is_active = FALSE
	WHERE id = $1 AND ($2::bigint IS NULL OR company_id = $2)
	RETURNING key_hash
	`

	var keyHash string
	err := r.DB.QueryRowxContext(ctx, query, id, companyID).Scan(&keyHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("[APIKeyRepo] ключ %s: %w", id, model.ErrNotFound)
		}
		return "", util.LogError("[APIKeyRepo] не удалось деактивировать ключ", err)
	}

	return keyHash, nil
}
