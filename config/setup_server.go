package config

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	DatabaseConfig DatabaseConfig  `yaml:"databaseConfig"`
	RedisConfig    RedisConfig     `yaml:"redisConfig"`
	ServerAddr     string          `yaml:"serverAddr"`
	Paseto         PasetoConfig    `yaml:"paseto"`
	TTL            TTL             `yaml:"TTL"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Log            LogConfig       `yaml:"log"`
}

// LoadConfig : читает yaml, затем .env (если есть) и переменные окружения поверх
func LoadConfig(path string) (*AppConfig, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения конфигурации %s: %w", path, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	// .env опционален
	_ = godotenv.Load()

	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()

	return &cfg, nil
}

func (cfg *AppConfig) applyEnv(getenv func(string) string) {
	if v := getenv("SERVER_ADDR"); v != "" {
		cfg.ServerAddr = v
	}
	if v := getenv("DATABASE_DSN"); v != "" {
		cfg.DatabaseConfig.DSN = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		cfg.RedisConfig.Addr = v
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisConfig.Password = v
	}
	if v := getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.RedisConfig.DB = db
		}
	}
	if v := getenv("PASETO_REQUIRE_SECRET"); v != "" {
		if required, err := strconv.ParseBool(v); err == nil {
			cfg.Paseto.RequireSecret = required
		}
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func (cfg *AppConfig) applyDefaults() {
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = ":8080"
	}

	d := &cfg.DatabaseConfig
	if d.MaxOpenConns == 0 {
		d.MaxOpenConns = 25
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = 5
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = 30 * time.Minute
	}

	r := &cfg.RedisConfig
	if r.Addr == "" {
		r.Addr = "localhost:6379"
	}
	if r.DialTimeout == 0 {
		r.DialTimeout = 2 * time.Second
	}
	if r.ReadTimeout == 0 {
		r.ReadTimeout = 500 * time.Millisecond
	}
	if r.WriteTimeout == 0 {
		r.WriteTimeout = 500 * time.Millisecond
	}
	if r.MaxRetries == 0 {
		r.MaxRetries = 3
	}
	if r.MinRetryBackoff == 0 {
		r.MinRetryBackoff = 8 * time.Millisecond
	}
	if r.MaxRetryBackoff == 0 {
		r.MaxRetryBackoff = 512 * time.Millisecond
	}
	if r.OpTimeout == 0 {
		r.OpTimeout = 2 * time.Second
	}

	if cfg.Paseto.SecretEnv == "" {
		cfg.Paseto.SecretEnv = "PASETO_SECRET_KEY"
	}
	if cfg.TTL.APIKeyCacheCeiling == 0 {
		cfg.TTL.APIKeyCacheCeiling = 365 * 24 * time.Hour
	}
	if cfg.TTL.TouchTimeout == 0 {
		cfg.TTL.TouchTimeout = 5 * time.Second
	}
	if cfg.RateLimit.LoginRequests == 0 {
		cfg.RateLimit.LoginRequests = 10
	}
	if cfg.RateLimit.LoginWindow == 0 {
		cfg.RateLimit.LoginWindow = time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

func SetupServer(serverAddress string) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:              serverAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server, router
}

func SetupDatabase(ctx context.Context, cfg *DatabaseConfig) (*Database, error) {
	return NewDatabaseConnection(ctx, "postgres", cfg)
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}
