package handler_test

import (
	"context"
	"time"

	"fleet-auth-server/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockAuthenticationService
type MockAuthenticationService struct {
	mock.Mock
}

func (m *MockAuthenticationService) Login(ctx context.Context, email, password string) (*model.TokensPair, error) {
	args := m.Called(ctx, email, password)
	if p, ok := args.Get(0).(*model.TokensPair); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticationService) Refresh(ctx context.Context, refreshToken string) (*model.TokensPair, error) {
	args := m.Called(ctx, refreshToken)
	if p, ok := args.Get(0).(*model.TokensPair); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticationService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	args := m.Called(ctx, accessToken, refreshToken)
	return args.Error(0)
}

// MockAPIKeyService
type MockAPIKeyService struct {
	mock.Mock
}

func (m *MockAPIKeyService) Validate(ctx context.Context, rawKey string) (*model.APIKey, model.APIKeyStatus) {
	args := m.Called(ctx, rawKey)
	key, _ := args.Get(0).(*model.APIKey)
	return key, args.Get(1).(model.APIKeyStatus)
}

func (m *MockAPIKeyService) Create(ctx context.Context, name string, companyID int64, permissions []string, expiresAt *time.Time) (*model.APIKey, string, error) {
	args := m.Called(ctx, name, companyID, permissions, expiresAt)
	key, _ := args.Get(0).(*model.APIKey)
	return key, args.String(1), args.Error(2)
}

func (m *MockAPIKeyService) Revoke(ctx context.Context, id string, companyID *int64) error {
	args := m.Called(ctx, id, companyID)
	return args.Error(0)
}
