package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"fleet-auth-server/config"
	"fleet-auth-server/internal/metrics"
	"fleet-auth-server/internal/model"
	"fleet-auth-server/internal/ports"
	"fleet-auth-server/internal/repository"
	"fleet-auth-server/internal/util"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const (
	apiKeyPrefix     = "fak_"
	apiKeyRandomSize = 32
)

// HashAPIKey : SHA-256 от сырого ключа, используется в БД и в ключе кэша
func HashAPIKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}

// APIKeyService : проверка API ключей с кэшем в Redis.
// Источник истины: БД, кэш заполняется только после промаха.
type APIKeyService struct {
	repo          ports.APIKeyRepository
	cache         ports.SessionStore
	cacheCeiling  time.Duration
	touchTimeout  time.Duration
	evictInterval time.Duration
	evictRetries  uint64
	now           func() time.Time
	touches       sync.WaitGroup
}

func NewAPIKeyService(repo ports.APIKeyRepository, cache ports.SessionStore, ttl *config.TTL) *APIKeyService {
	s := &APIKeyService{
		repo:          repo,
		cache:         cache,
		cacheCeiling:  365 * 24 * time.Hour,
		touchTimeout:  5 * time.Second,
		evictInterval: 50 * time.Millisecond,
		evictRetries:  4,
		now:           time.Now,
	}
	if ttl != nil {
		if ttl.APIKeyCacheCeiling > 0 {
			s.cacheCeiling = ttl.APIKeyCacheCeiling
		}
		if ttl.TouchTimeout > 0 {
			s.touchTimeout = ttl.TouchTimeout
		}
	}
	return s
}

// Validate : возвращает ключ и APIKeyValid либо nil и причину отказа.
// Причина нужна для аудита, клиенту отдаётся общий 401.
func (s *APIKeyService) Validate(ctx context.Context, rawKey string) (*model.APIKey, model.APIKeyStatus) {
	if rawKey == "" {
		return nil, model.APIKeyNotFound
	}

	keyHash := HashAPIKey(rawKey)
	cacheKey := repository.APIKeyCacheKey(keyHash)
	now := s.now()

	var cached model.APIKey
	hit, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		metrics.SessionStoreFailuresTotal.WithLabelValues("api_key_cache").Inc()
		return nil, model.APIKeyUnavailable
	}

	if hit {
		metrics.APIKeyCacheLookupsTotal.WithLabelValues("hit").Inc()
		if !cached.IsActive {
			return nil, model.APIKeyInactive
		}
		if cached.Expired(now) {
			if err := s.cache.Delete(ctx, cacheKey); err != nil {
				util.Logger.Warn().Err(err).Str("key_id", cached.ID).Msg("[APIKeyService] не удалось удалить истёкший ключ из кэша")
			}
			return nil, model.APIKeyExpired
		}

		cached.KeyHash = keyHash
		cached.LastUsedAt = &now
		s.cacheKey(ctx, &cached, now)
		s.touchAsync(cached.ID, now)
		return &cached, model.APIKeyValid
	}

	metrics.APIKeyCacheLookupsTotal.WithLabelValues("miss").Inc()

	key, err := s.repo.FindByHash(ctx, keyHash)
	if errors.Is(err, model.ErrNotFound) {
		return nil, model.APIKeyNotFound
	}
	if err != nil {
		return nil, model.APIKeyUnavailable
	}
	if !key.IsActive {
		return nil, model.APIKeyInactive
	}
	if key.Expired(now) {
		return nil, model.APIKeyExpired
	}

	key.LastUsedAt = &now
	s.cacheKey(ctx, key, now)
	s.touchAsync(key.ID, now)
	return key, model.APIKeyValid
}

// cacheKey : TTL = время до истечения ключа либо потолок, если срока нет
func (s *APIKeyService) cacheKey(ctx context.Context, key *model.APIKey, now time.Time) {
	ttl := s.cacheCeiling
	if key.ExpiresAt != nil {
		ttl = key.ExpiresAt.Sub(now)
	}
	if ttl <= 0 {
		return
	}

	if err := s.cache.Set(ctx, repository.APIKeyCacheKey(key.KeyHash), key, ttl); err != nil {
		util.Logger.Warn().Err(err).Str("key_id", key.ID).Msg("[APIKeyService] не удалось закэшировать ключ")
	}
}

// touchAsync : обновление last_used_at не блокирует и не валит запрос
func (s *APIKeyService) touchAsync(id string, usedAt time.Time) {
	s.touches.Add(1)
	go func() {
		defer s.touches.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.touchTimeout)
		defer cancel()

		if err := s.repo.TouchLastUsed(ctx, id, usedAt); err != nil {
			util.Logger.Warn().Err(err).Str("key_id", id).Msg("[APIKeyService] не удалось обновить last_used_at")
		}
	}()
}

// Wait : дожидается фоновых обновлений last_used_at (при остановке сервера)
func (s *APIKeyService) Wait() {
	s.touches.Wait()
}

// Create : выпускает ключ, сырое значение возвращается один раз
func (s *APIKeyService) Create(ctx context.Context, name string, companyID int64, permissions []string, expiresAt *time.Time) (*model.APIKey, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", fmt.Errorf("[APIKeyService] имя ключа обязательно: %w", model.ErrInvalidInput)
	}
	if len(permissions) == 0 {
		return nil, "", fmt.Errorf("[APIKeyService] нужен хотя бы один permission: %w", model.ErrInvalidInput)
	}
	if expiresAt != nil && !expiresAt.After(s.now()) {
		return nil, "", fmt.Errorf("[APIKeyService] срок действия ключа в прошлом: %w", model.ErrInvalidInput)
	}

	rawKey, err := generateAPIKey()
	if err != nil {
		return nil, "", util.LogError("[APIKeyService] ошибка генерации ключа", err)
	}

	key := &model.APIKey{
		ID:          uuid.NewString(),
		Name:        name,
		KeyHash:     HashAPIKey(rawKey),
		Permissions: permissions,
		CompanyID:   companyID,
		IsActive:    true,
		ExpiresAt:   expiresAt,
	}

	created, err := s.repo.Create(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("[APIKeyService] ошибка сохранения ключа: %w", err)
	}

	util.Logger.Info().Str("key_id", created.ID).Int64("company_id", companyID).
		Str("fingerprint", util.KeyFingerprint(created.KeyHash)).Msg("[APIKeyService] выпущен API ключ")
	return created, rawKey, nil
}

// Revoke : деактивирует ключ в БД и убирает его из кэша.
// companyID ограничивает отзыв ключами своей компании, nil только для администратора.
func (s *APIKeyService) Revoke(ctx context.Context, id string, companyID *int64) error {
	keyHash, err := s.repo.Deactivate(ctx, id, companyID)
	if err != nil {
		return fmt.Errorf("[APIKeyService] ошибка отзыва ключа: %w", err)
	}

	if err := s.evict(ctx, keyHash); err != nil {
		metrics.SessionStoreFailuresTotal.WithLabelValues("api_key_evict").Inc()
		util.Logger.Error().Err(err).Str("key_id", id).Msg("[APIKeyService] ключ отозван, но остался в кэше")
		return fmt.Errorf("[APIKeyService] ключ отозван, но остался в кэше: %w", err)
	}

	util.Logger.Info().Str("key_id", id).Msg("[APIKeyService] API ключ отозван")
	return nil
}

// evict : попадание в кэш не перепроверяет БД, поэтому удаление повторяется с backoff
func (s *APIKeyService) evict(ctx context.Context, keyHash string) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.evictInterval
	policy.MaxInterval = 10 * s.evictInterval
	policy.MaxElapsedTime = 0

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := s.cache.Delete(ctx, repository.APIKeyCacheKey(keyHash))
		if err != nil {
			util.Logger.Warn().Err(err).Int("attempt", attempt).Msg("[APIKeyService] не удалось удалить ключ из кэша")
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, s.evictRetries), ctx))
}

func generateAPIKey() (string, error) {
	raw := make([]byte, apiKeyRandomSize)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return apiKeyPrefix + base64.RawURLEncoding.EncodeToString(raw), nil
}
