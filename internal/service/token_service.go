package service

import (
	"context"
	"time"

	"fleet-auth-server/internal/metrics"
	"fleet-auth-server/internal/model"
	"fleet-auth-server/internal/ports"
	"fleet-auth-server/internal/repository"
	"fleet-auth-server/internal/util"
)

// TokenService : выпуск, проверка и отзыв токенов поверх кодека и хранилища сессий.
//
// Порядок проверок в ValidateSession (blacklist -> расшифровка -> сессия) важен:
// отзыв виден даже если удаление записи сессии ещё не завершилось.
// Между разными ключами транзакций нет, отзыв best-effort.
type TokenService struct {
	codec ports.TokenCodec
	store ports.SessionStore
	now   func() time.Time
}

func NewTokenService(codec ports.TokenCodec, store ports.SessionStore) *TokenService {
	return &TokenService{
		codec: codec,
		store: store,
		now:   time.Now,
	}
}

// IssueToken выпускает токен класса class со сроком now+24h (access) или now+30d (refresh).
//
// Сессия НЕ регистрируется: токен без StoreSession пройдёт только расшифровку,
// а ValidateSession для него вернёт nil. Для отзываемой сессии сразу вызывайте StoreSession.
func (s *TokenService) IssueToken(claims model.Claims, class model.TokenClass) (string, error) {
	ttl, err := class.TTL()
	if err != nil {
		return "", err
	}

	claims.TokenType = class
	claims.ExpiresAt = s.now().Add(ttl).Truncate(time.Second)

	token, err := s.codec.Encrypt(claims)
	if err != nil {
		return "", util.LogError("[TokenService] ошибка шифрования токена", err)
	}
	return token, nil
}

// StoreSession : пишет запись сессии с TTL класса, false при ошибке хранилища
func (s *TokenService) StoreSession(ctx context.Context, token string, user model.SessionUser, class model.TokenClass) bool {
	ttl, err := class.TTL()
	if err != nil {
		util.Logger.Error().Err(err).Str("class", string(class)).Msg("[TokenService] сессия не сохранена")
		return false
	}

	user.TokenType = class
	if err := s.store.Set(ctx, repository.SessionKey(token), user, ttl); err != nil {
		util.Logger.Error().Err(err).Str("user_id", user.ID).Msg("[TokenService] сессия не сохранена")
		return false
	}
	return true
}

// ValidateSession : nil при отзыве, невалидном токене, отсутствии сессии
// или недоступном хранилище
func (s *TokenService) ValidateSession(ctx context.Context, token string) *model.SessionUser {
	revoked, err := s.store.Exists(ctx, repository.BlacklistKey(token))
	if err != nil {
		metrics.SessionStoreFailuresTotal.WithLabelValues("blacklist_check").Inc()
		return nil
	}
	if revoked {
		return nil
	}

	claims := s.codec.Decrypt(token)
	if claims == nil {
		return nil
	}

	var user model.SessionUser
	found, err := s.store.Get(ctx, repository.SessionKey(token), &user)
	if err != nil {
		metrics.SessionStoreFailuresTotal.WithLabelValues("session_lookup").Inc()
		return nil
	}
	if !found {
		return nil
	}

	if user.ID != claims.UserID || user.TokenType != claims.TokenType {
		util.Logger.Warn().Str("user_id", claims.UserID).Msg("[TokenService] запись сессии не совпадает с токеном")
		return nil
	}

	return &user
}

// InvalidateToken : идемпотентен. Невалидный или истёкший токен -> true без записи.
// Ошибка записи в blacklist логируется, результат определяется удалением сессии.
func (s *TokenService) InvalidateToken(ctx context.Context, token string) bool {
	claims := s.codec.Decrypt(token)
	if claims == nil {
		return true
	}

	remaining := claims.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return true
	}

	entry := model.RevocationEntry{UserID: claims.UserID, RevokedAt: s.now().UTC()}
	if err := s.store.Set(ctx, repository.BlacklistKey(token), entry, remaining); err != nil {
		metrics.TokenRevocationsTotal.WithLabelValues("blacklist_failed").Inc()
		util.Logger.Error().Err(err).Str("user_id", claims.UserID).Msg("[TokenService] не удалось записать токен в blacklist")
	} else {
		metrics.TokenRevocationsTotal.WithLabelValues("revoked").Inc()
	}

	if err := s.store.Delete(ctx, repository.SessionKey(token)); err != nil {
		util.Logger.Error().Err(err).Str("user_id", claims.UserID).Msg("[TokenService] не удалось удалить сессию")
		return false
	}

	return true
}
