package ports

import (
	"context"

	"fleet-auth-server/internal/model"
)

type AuthenticationService interface {
	Login(ctx context.Context, email, password string) (*model.TokensPair, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokensPair, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
}
