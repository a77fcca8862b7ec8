package repository_test

import (
	"context"
	"testing"
	"time"

	"fleet-auth-server/internal/model"
	"fleet-auth-server/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "email", "password_hash", "company_id", "city_id", "is_admin", "role", "user_type", "created_at"}

func TestUserRepository_FindByEmail(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(database)

	rows := sqlmock.NewRows(userColumns).
		AddRow("u1", "dispatcher@fleet.io", "hash", int64(42), nil, false, "dispatcher", "company", time.Now())
	mock.ExpectQuery(`SELECT\s+id,\s*email.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1`).
		WithArgs("dispatcher@fleet.io").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "dispatcher@fleet.io")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	require.NotNil(t, user.CompanyID)
	assert.Equal(t, int64(42), *user.CompanyID)
	assert.Nil(t, user.CityID)
	assert.Equal(t, model.CompanyUser, user.UserType)
}

func TestUserRepository_FindByIDNotFound(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(database)

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := repo.FindByID(context.Background(), "ghost")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
