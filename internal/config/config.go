// Package config загружает конфигурацию сервера через Koanf v2
// со слоями: дефолты -> YAML файл -> переменные окружения.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths пути, где ищется конфиг файл, в порядке приоритета
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/scenesync/config.yaml",
	"/etc/scenesync/config.yml",
}

// ConfigPathEnvVar переменная окружения, переопределяющая путь к конфигу
const ConfigPathEnvVar = "SCENESYNC_CONFIG"

// Config корневая конфигурация сервера
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Cache    CacheConfig    `koanf:"cache"`
	Auth     AuthConfig     `koanf:"auth"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RateLimitRPS    float64       `koanf:"rate_limit_rps"`
	RateLimitBurst  int           `koanf:"rate_limit_burst"`
}

// Addr возвращает адрес для http.Server
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig настройки SQLite базы
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// CacheConfig настройки BoltDB кэша артефактов рендера
type CacheConfig struct {
	Path string `koanf:"path"`
}

// AuthConfig настройки JWT
type AuthConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	AccessTokenTTL time.Duration `koanf:"access_token_ttl"`
}

// LoggingConfig настройки логирования
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// defaultConfig возвращает конфигурацию с дефолтными значениями.
// Дефолты применяются первыми, затем перекрываются файлом и env.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitRPS:    50,
			RateLimitBurst:  100,
		},
		Database: DatabaseConfig{
			Path: "scenesync.db",
		},
		Cache: CacheConfig{
			Path: "rendercache.db",
		},
		Auth: AuthConfig{
			JWTSecret:      "",
			AccessTokenTTL: 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load загружает конфигурацию со слоями:
//  1. Дефолты из структуры
//  2. YAML файл (опционально)
//  3. Переменные окружения (высший приоритет)
func Load() (*Config, error) {
	k := koanf.New(".")

	// Слой 1: дефолты
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Слой 2: файл (опционально)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Слой 3: переменные окружения
	// SCENESYNC_SERVER_PORT -> server.port
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate проверяет обязательные поля конфигурации
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required (set SCENESYNC_AUTH_JWT_SECRET)")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in range 1-65535")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Cache.Path == "" {
		return fmt.Errorf("cache.path is required")
	}
	return nil
}

// findConfigFile ищет конфиг файл по известным путям
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc преобразует имена переменных окружения в пути koanf.
// Например: SCENESYNC_SERVER_PORT -> server.port
func envTransformFunc(key string) string {
	envMappings := map[string]string{
		"SCENESYNC_SERVER_HOST":             "server.host",
		"SCENESYNC_SERVER_PORT":             "server.port",
		"SCENESYNC_SERVER_READ_TIMEOUT":     "server.read_timeout",
		"SCENESYNC_SERVER_WRITE_TIMEOUT":    "server.write_timeout",
		"SCENESYNC_SERVER_IDLE_TIMEOUT":     "server.idle_timeout",
		"SCENESYNC_SERVER_SHUTDOWN_TIMEOUT": "server.shutdown_timeout",
		"SCENESYNC_SERVER_RATE_LIMIT_RPS":   "server.rate_limit_rps",
		"SCENESYNC_SERVER_RATE_LIMIT_BURST": "server.rate_limit_burst",
		"SCENESYNC_DATABASE_PATH":           "database.path",
		"SCENESYNC_CACHE_PATH":              "cache.path",
		"SCENESYNC_AUTH_JWT_SECRET":         "auth.jwt_secret",
		"SCENESYNC_AUTH_ACCESS_TOKEN_TTL":   "auth.access_token_ttl",
		"SCENESYNC_LOG_LEVEL":               "logging.level",
		"SCENESYNC_LOG_FORMAT":              "logging.format",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Неизвестные переменные пропускаем, чтобы не засорять конфиг
	return ""
}
