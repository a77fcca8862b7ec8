package model

import (
	"time"

	"github.com/lib/pq"
)

// APIKey : долгоживущий API ключ. Сам ключ не хранится, только SHA-256 хэш.
type APIKey struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	KeyHash     string         `db:"key_hash" json:"-"`
	Permissions pq.StringArray `db:"permissions" json:"permissions"`
	CompanyID   int64          `db:"company_id" json:"companyId"`
	IsActive    bool           `db:"is_active" json:"isActive"`
	ExpiresAt   *time.Time     `db:"expires_at" json:"expiresAt,omitempty"`
	LastUsedAt  *time.Time     `db:"last_used_at" json:"lastUsedAt,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
}

// Expired : истёк ли ключ на момент now
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && !k.ExpiresAt.After(now)
}

// APIKeyStatus : внутренний результат проверки ключа, нужен для аудита.
// Наружу отдаётся только общий 401.
type APIKeyStatus int

const (
	APIKeyValid APIKeyStatus = iota
	APIKeyNotFound
	APIKeyExpired
	APIKeyInactive
	APIKeyUnavailable
)

func (s APIKeyStatus) String() string {
	switch s {
	case APIKeyValid:
		return "valid"
	case APIKeyNotFound:
		return "not_found"
	case APIKeyExpired:
		return "expired"
	case APIKeyInactive:
		return "inactive"
	case APIKeyUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}
