package repository

import (
	"context"
	"database/sql"
	"errors"

	"fleet-auth-server/config"
	"fleet-auth-server/internal/model"
	"fleet-auth-server/internal/util"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, email, password_hash, company_id, city_id, is_admin, role, user_type, created_at`

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// FindByEmail : ищет пользователя по email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.findOne(ctx, query, email)
}

// FindByID : ищет пользователя по идентификатору
func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*model.User, error) {
	var user model.User
	err := sqlx.GetContext(ctx, r.DB, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, util.LogError("[UserRepo] не удалось найти пользователя в БД", err)
	}
	return &user, nil
}
