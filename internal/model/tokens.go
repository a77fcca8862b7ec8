package model

import (
	"errors"
	"time"
)

// TokenClass : класс токена (access или refresh)
type TokenClass string

const (
	AccessToken  TokenClass = "access"
	RefreshToken TokenClass = "refresh"
)

const (
	AccessTokenTTL  = 24 * time.Hour
	RefreshTokenTTL = 30 * 24 * time.Hour
)

// TTL возвращает окно валидности класса токена
func (c TokenClass) TTL() (time.Duration, error) {
	switch c {
	case AccessToken:
		return AccessTokenTTL, nil
	case RefreshToken:
		return RefreshTokenTTL, nil
	default:
		return 0, ErrUnknownTokenClass
	}
}

var ErrUnknownTokenClass = errors.New("неизвестный класс токена")

// UserType : дискриминатор типа пользователя
type UserType string

const (
	CompanyUser UserType = "company"
	CityUser    UserType = "city"
	APIKeyUser  UserType = "api_key"
)

// Claims : содержимое зашифрованного токена.
// ExpiresAt присутствует всегда и проверяется как внутри токена, так и через TTL сессии.
type Claims struct {
	UserID    string     `json:"id"`
	CompanyID *int64     `json:"companyId,omitempty"`
	CityID    *int64     `json:"cityId,omitempty"`
	IsAdmin   *bool      `json:"isAdmin,omitempty"`
	Role      string     `json:"role,omitempty"`
	UserType  UserType   `json:"userType,omitempty"`
	TokenType TokenClass `json:"tokenType"`
	ExpiresAt time.Time  `json:"exp"`
}

// SessionUser : запись сессии, хранится в кэше по ключу session:<token>
type SessionUser struct {
	ID        string     `json:"id"`
	CompanyID *int64     `json:"companyId,omitempty"`
	CityID    *int64     `json:"cityId,omitempty"`
	IsAdmin   *bool      `json:"isAdmin,omitempty"`
	Role      string     `json:"role,omitempty"`
	UserType  UserType   `json:"userType,omitempty"`
	TokenType TokenClass `json:"tokenType"`
}

// SessionUserFromClaims переносит идентичность из claims в запись сессии
func SessionUserFromClaims(claims *Claims) SessionUser {
	return SessionUser{
		ID:        claims.UserID,
		CompanyID: claims.CompanyID,
		CityID:    claims.CityID,
		IsAdmin:   claims.IsAdmin,
		Role:      claims.Role,
		UserType:  claims.UserType,
		TokenType: claims.TokenType,
	}
}

// RevocationEntry : значение записи в blacklist:<token>
type RevocationEntry struct {
	UserID    string    `json:"id"`
	RevokedAt time.Time `json:"revokedAt"`
}

// TokensPair содержит пару access и refresh токенов
// swagger:model
type TokensPair struct {
	// Access токен (PASETO v4.local)
	// example: v4.local.AAAAAAAA...
	AccessToken string `json:"accessToken"`

	// Refresh токен (для получения новой пары)
	// example: v4.local.BBBBBBBB...
	RefreshToken string `json:"refreshToken"`
}
