package service

import (
	"context"
	"errors"
	"fmt"

	"fleet-auth-server/internal/model"
	"fleet-auth-server/internal/ports"
	"fleet-auth-server/internal/security"
	"fleet-auth-server/internal/util"
)

// AuthenticationService : вход, ротация refresh токена и выход поверх TokenService
type AuthenticationService struct {
	tokens ports.TokenService
	users  ports.UserRepository
}

func NewAuthenticationService(tokens ports.TokenService, users ports.UserRepository) *AuthenticationService {
	return &AuthenticationService{
		tokens: tokens,
		users:  users,
	}
}

// Login : проверяет пароль, выпускает пару токенов и регистрирует обе сессии.
// Неизвестный email и неверный пароль неразличимы для вызывающего.
func (s *AuthenticationService) Login(ctx context.Context, email, password string) (*model.TokensPair, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			security.BurnPasswordCheck(password)
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, model.ErrInvalidCredentials
	}

	return s.issuePair(ctx, user.Claims())
}

// Refresh : меняет refresh токен на новую пару, старый refresh отзывается
func (s *AuthenticationService) Refresh(ctx context.Context, refreshToken string) (*model.TokensPair, error) {
	session := s.tokens.ValidateSession(ctx, refreshToken)
	if session == nil || session.TokenType != model.RefreshToken {
		return nil, model.ErrInvalidToken
	}

	// роли и флаги могли измениться с момента входа
	user, err := s.users.FindByID(ctx, session.ID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrInvalidToken
		}
		return nil, fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}

	if !s.tokens.InvalidateToken(ctx, refreshToken) {
		return nil, fmt.Errorf("[AuthService] не удалось отозвать refresh токен: %w", model.ErrSessionStore)
	}

	return s.issuePair(ctx, user.Claims())
}

// Logout : отзывает access и (если передан) refresh токен
func (s *AuthenticationService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if !s.tokens.InvalidateToken(ctx, accessToken) {
		return fmt.Errorf("[AuthService] не удалось завершить сессию: %w", model.ErrSessionStore)
	}

	if refreshToken != "" && !s.tokens.InvalidateToken(ctx, refreshToken) {
		return fmt.Errorf("[AuthService] не удалось отозвать refresh токен: %w", model.ErrSessionStore)
	}

	return nil
}

func (s *AuthenticationService) issuePair(ctx context.Context, claims model.Claims) (*model.TokensPair, error) {
	accessToken, err := s.tokens.IssueToken(claims, model.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка генерации токенов: %w", err)
	}
	refreshToken, err := s.tokens.IssueToken(claims, model.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка генерации токенов: %w", err)
	}

	user := model.SessionUserFromClaims(&claims)
	if !s.tokens.StoreSession(ctx, accessToken, user, model.AccessToken) {
		return nil, fmt.Errorf("[AuthService] ошибка сохранения сессии: %w", model.ErrSessionStore)
	}
	if !s.tokens.StoreSession(ctx, refreshToken, user, model.RefreshToken) {
		if !s.tokens.InvalidateToken(ctx, accessToken) {
			util.Logger.Error().Str("user_id", claims.UserID).Msg("[AuthService] access сессия осталась без пары")
		}
		return nil, fmt.Errorf("[AuthService] ошибка сохранения сессии: %w", model.ErrSessionStore)
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
