// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Supported row store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	CORSOrigins []string
	Database    DatabaseConfig
	Chat        ChatConfig
	GRPCPort    string // empty disables the gRPC listener
	Redis       RedisConfig

	// DisplayLocation is the zone user timestamps are shown in.
	// Nil keeps each timestamp's stored location.
	DisplayLocation *time.Location
}

// DatabaseConfig selects and locates the users row store.
type DatabaseConfig struct {
	Driver   string
	Path     string // sqlite file path
	MySQLDSN string
}

// ChatConfig controls the chat action.
type ChatConfig struct {
	ReplyDelay      time.Duration
	MaxRequestBytes int64
}

// RedisConfig controls the optional users listing cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	UsersTTL time.Duration // 0 disables caching
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		CORSOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
			Path:     getEnv("DB_PATH", "./data/app.db"),
			MySQLDSN: getEnv("MYSQL_DSN", ""),
		},
		Chat: ChatConfig{
			ReplyDelay:      getEnvDuration("CHAT_REPLY_DELAY", 500*time.Millisecond),
			MaxRequestBytes: int64(getEnvInt("CHAT_MAX_BODY_BYTES", 1<<20)),
		},
		GRPCPort: getEnv("GRPC_PORT", ""),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			UsersTTL: getEnvDuration("USERS_CACHE_TTL", 0),
		},
	}

	loc, err := LoadLocation(getEnv("DISPLAY_TIMEZONE", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: DISPLAY_TIMEZONE: %w", err)
	}
	cfg.DisplayLocation = loc

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("DB_PATH cannot be empty")
		}
	case DriverMySQL:
		if c.Database.MySQLDSN == "" {
			return fmt.Errorf("MYSQL_DSN cannot be empty when DB_DRIVER=mysql")
		}
		if _, err := mysql.ParseDSN(c.Database.MySQLDSN); err != nil {
			return fmt.Errorf("MYSQL_DSN is invalid: %w", err)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Chat.ReplyDelay < 0 {
		return fmt.Errorf("CHAT_REPLY_DELAY must be >= 0")
	}
	if c.Chat.MaxRequestBytes <= 0 {
		return fmt.Errorf("CHAT_MAX_BODY_BYTES must be > 0")
	}
	if c.Redis.UsersTTL < 0 {
		return fmt.Errorf("USERS_CACHE_TTL must be >= 0")
	}
	if c.Redis.UsersTTL > 0 && c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required when USERS_CACHE_TTL is set")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// CacheEnabled reports whether the users listing should go through redis.
func (c *Config) CacheEnabled() bool {
	return c.Redis.Addr != "" && c.Redis.UsersTTL > 0
}

// LoadLocation resolves an IANA zone name such as "America/Sao_Paulo" or
// "Local". An empty name returns nil.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	return time.LoadLocation(name)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
