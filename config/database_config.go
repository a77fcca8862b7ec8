package config

import (
	"context"
	"fmt"

	"fleet-auth-server/internal/util"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Database : пул соединений с PostgreSQL (пользователи и API ключи)
type Database struct {
	*sqlx.DB
}

func NewDatabaseConnection(ctx context.Context, dbDriver string, cfg *DatabaseConfig) (*Database, error) {
	database, err := sqlx.ConnectContext(ctx, dbDriver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// на каждый запрос с X-API-Key при промахе кэша идёт SELECT, пул ограничен явно
	database.SetMaxOpenConns(cfg.MaxOpenConns)
	database.SetMaxIdleConns(cfg.MaxIdleConns)
	database.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	util.Logger.Info().
		Str("driver", dbDriver).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("подключение к БД успешно выполнено")

	return &Database{database}, nil
}

func (db *Database) Close() error {
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия соединения с БД: %w", err)
	}
	return nil
}
