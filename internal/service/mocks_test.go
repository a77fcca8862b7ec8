package service_test

import (
	"context"
	"time"

	"fleet-auth-server/internal/model"

	"github.com/stretchr/testify/mock"
)

// ===== MOCKS =====

// MockSessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockSessionStore) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockAPIKeyRepository
type MockAPIKeyRepository struct {
	mock.Mock
}

func (m *MockAPIKeyRepository) Create(ctx context.Context, key *model.APIKey) (*model.APIKey, error) {
	args := m.Called(ctx, key)
	if k, ok := args.Get(0).(*model.APIKey); ok {
		return k, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAPIKeyRepository) FindByHash(ctx context.Context, keyHash string) (*model.APIKey, error) {
	args := m.Called(ctx, keyHash)
	if k, ok := args.Get(0).(*model.APIKey); ok && k != nil {
		// копия, чтобы сервис не правил запись, которую вернёт следующий вызов
		clone := *k
		return &clone, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAPIKeyRepository) TouchLastUsed(ctx context.Context, id string, usedAt time.Time) error {
	args := m.Called(ctx, id, usedAt)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) Deactivate(ctx context.Context, id string, companyID *int64) (string, error) {
	args := m.Called(ctx, id, companyID)
	return args.String(0), args.Error(1)
}

// MockTokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) IssueToken(claims model.Claims, class model.TokenClass) (string, error) {
	args := m.Called(claims, class)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) StoreSession(ctx context.Context, token string, user model.SessionUser, class model.TokenClass) bool {
	args := m.Called(ctx, token, user, class)
	return args.Bool(0)
}

func (m *MockTokenService) ValidateSession(ctx context.Context, token string) *model.SessionUser {
	args := m.Called(ctx, token)
	if u, ok := args.Get(0).(*model.SessionUser); ok {
		return u
	}
	return nil
}

func (m *MockTokenService) InvalidateToken(ctx context.Context, token string) bool {
	args := m.Called(ctx, token)
	return args.Bool(0)
}

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
