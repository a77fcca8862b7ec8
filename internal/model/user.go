package model

import (
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("запись не найдена")
	ErrInvalidCredentials = errors.New("неверный логин или пароль")
	ErrInvalidToken       = errors.New("невалидный токен")
	ErrSessionStore       = errors.New("хранилище сессий недоступно")
	ErrInvalidInput       = errors.New("некорректные параметры")
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CompanyID    *int64    `db:"company_id" json:"companyId,omitempty"`
	CityID       *int64    `db:"city_id" json:"cityId,omitempty"`
	IsAdmin      bool      `db:"is_admin" json:"isAdmin"`
	Role         string    `db:"role" json:"role,omitempty"`
	UserType     UserType  `db:"user_type" json:"userType"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Claims собирает claims пользователя для выпуска токена
func (u *User) Claims() Claims {
	isAdmin := u.IsAdmin
	return Claims{
		UserID:    u.ID,
		CompanyID: u.CompanyID,
		CityID:    u.CityID,
		IsAdmin:   &isAdmin,
		Role:      u.Role,
		UserType:  u.UserType,
	}
}

// Identity : идентичность, которую middleware кладёт в контекст запроса
type Identity struct {
	ID          string     `json:"id"`
	CompanyID   *int64     `json:"companyId,omitempty"`
	IsAdmin     *bool      `json:"isAdmin,omitempty"`
	CityID      *int64     `json:"cityId,omitempty"`
	Role        string     `json:"role,omitempty"`
	UserType    UserType   `json:"userType"`
	TokenType   TokenClass `json:"tokenType,omitempty"`
	Permissions []string   `json:"permissions,omitempty"`
	AuthMethod  AuthMethod `json:"authMethod"`
}

type AuthMethod string

const (
	AuthMethodBearer AuthMethod = "bearer"
	AuthMethodAPIKey AuthMethod = "api_key"
)

// Admin возвращает true только при явно выставленном флаге
func (i *Identity) Admin() bool {
	return i.IsAdmin != nil && *i.IsAdmin
}

// HasPermission : проверяет наличие разрешения у API ключа
func (i *Identity) HasPermission(permission string) bool {
	for _, p := range i.Permissions {
		if p == permission || p == "*" {
			return true
		}
	}
	return false
}

func IdentityFromSession(user *SessionUser) *Identity {
	return &Identity{
		ID:         user.ID,
		CompanyID:  user.CompanyID,
		IsAdmin:    user.IsAdmin,
		CityID:     user.CityID,
		Role:       user.Role,
		UserType:   user.UserType,
		TokenType:  user.TokenType,
		AuthMethod: AuthMethodBearer,
	}
}

func IdentityFromAPIKey(key *APIKey) *Identity {
	companyID := key.CompanyID
	return &Identity{
		ID:          key.ID,
		CompanyID:   &companyID,
		Role:        "api_key",
		UserType:    APIKeyUser,
		Permissions: key.Permissions,
		AuthMethod:  AuthMethodAPIKey,
	}
}
