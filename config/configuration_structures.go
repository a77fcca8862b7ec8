package config

import "time"

type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr            string        `yaml:"addr"`
	Password        string        `yaml:"password"`
	DB              int           `yaml:"db"`
	PoolSize        int           `yaml:"pool_size"`
	DialTimeout     time.Duration `yaml:"dial_timeout"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	MaxRetries      int           `yaml:"max_retries"`
	MinRetryBackoff time.Duration `yaml:"min_retry_backoff"`
	MaxRetryBackoff time.Duration `yaml:"max_retry_backoff"`
	// OpTimeout : верхняя граница на одну операцию с хранилищем сессий
	OpTimeout time.Duration `yaml:"op_timeout"`
}

type PasetoConfig struct {
	// SecretEnv : имя переменной окружения с ключом (base64 или hex, 32 байта)
	SecretEnv string `yaml:"secret_env"`
	// RequireSecret : запрещает старт с эфемерным ключом
	RequireSecret bool `yaml:"require_secret"`
}

type TTL struct {
	APIKeyCacheCeiling time.Duration `yaml:"api_key_cache_ceiling"`
	TouchTimeout       time.Duration `yaml:"touch_timeout"`
}

type RateLimitConfig struct {
	LoginRequests int           `yaml:"login_requests"`
	LoginWindow   time.Duration `yaml:"login_window"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
