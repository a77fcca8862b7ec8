package ports

import (
	"context"

	"fleet-auth-server/internal/model"
)

// TokenCodec : шифрование и расшифровка токенов
type TokenCodec interface {
	Encrypt(claims model.Claims) (string, error)
	Decrypt(token string) *model.Claims
}

type TokenService interface {
	IssueToken(claims model.Claims, class model.TokenClass) (string, error)
	StoreSession(ctx context.Context, token string, user model.SessionUser, class model.TokenClass) bool
	ValidateSession(ctx context.Context, token string) *model.SessionUser
	InvalidateToken(ctx context.Context, token string) bool
}

// SessionValidator : всё, что нужно middleware от TokenService
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) *model.SessionUser
}
