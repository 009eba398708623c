package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Ticket storage configuration
	Storage StorageConfig

	// Database configuration (postgres backend)
	Database DatabaseConfig

	// Redis configuration (redis backend)
	Redis RedisConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// WebSocket configuration
	WebSocket WebSocketConfig

	// Logging configuration
	Logging LoggingConfig

	// Application metadata
	App AppConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Storage backends
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// StorageConfig holds ticket store configuration
type StorageConfig struct {
	Backend        string // memory, file, postgres, redis
	Dir            string // data directory for the file backend
	ResetOnCorrupt bool   // treat malformed persisted values as absent
	SeedDemo       bool   // create demo tickets when the store is empty
	TimeLayout     string // layout of the createdAt timestamp
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
	FormRPS           float64 // Stricter limit for form submissions
	FormBurst         int
}

// WebSocketConfig holds WebSocket configuration
type WebSocketConfig struct {
	AllowedOrigins  []string // also used for CORS on the JSON API
	ReadBufferSize  int
	WriteBufferSize int
	PingInterval    time.Duration
	PongWait        time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

// Load reads configuration from the environment, after merging a .env file
// when one exists. Malformed values are errors, not silent defaults.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	e := &envReader{}
	cfg := &Config{
		Server: ServerConfig{
			Port:            e.str("SERVER_PORT", ":8080"),
			ReadTimeout:     e.duration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    e.duration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     e.duration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: e.duration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Storage: StorageConfig{
			Backend:        strings.ToLower(e.str("STORAGE_BACKEND", BackendFile)),
			Dir:            e.str("STORAGE_DIR", "./data"),
			ResetOnCorrupt: e.boolean("STORE_RESET_ON_CORRUPT", false),
			SeedDemo:       e.boolean("SEED_DEMO", false),
			TimeLayout:     e.str("TICKET_TIME_LAYOUT", "1/2/2006, 3:04:05 PM"),
		},
		Database: DatabaseConfig{
			URL:             e.str("DATABASE_URL", ""),
			MaxOpenConns:    e.integer("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    e.integer("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: e.duration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: e.duration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:      e.str("REDIS_ADDR", ""),
			Password:  e.str("REDIS_PASSWORD", ""),
			DB:        e.integer("REDIS_DB", 0),
			KeyPrefix: e.str("REDIS_KEY_PREFIX", "helpdesk:"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           e.boolean("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: e.float("RATE_LIMIT_RPS", 10),
			BurstSize:         e.integer("RATE_LIMIT_BURST", 20),
			FormRPS:           e.float("RATE_LIMIT_FORM_RPS", 2),
			FormBurst:         e.integer("RATE_LIMIT_FORM_BURST", 10),
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins:  e.list("WS_ALLOWED_ORIGINS"),
			ReadBufferSize:  e.integer("WS_READ_BUFFER_SIZE", 1024),
			WriteBufferSize: e.integer("WS_WRITE_BUFFER_SIZE", 1024),
			PingInterval:    e.duration("WS_PING_INTERVAL", 54*time.Second),
			PongWait:        e.duration("WS_PONG_WAIT", 60*time.Second),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(e.str("LOG_LEVEL", "info")),
			Format: strings.ToLower(e.str("LOG_FORMAT", "json")),
		},
		App: AppConfig{
			Name:        e.str("APP_NAME", "it-support-portal"),
			Version:     e.str("APP_VERSION", "dev"),
			Environment: e.str("APP_ENV", "development"),
		},
	}

	if err := errors.Join(e.errs...); err != nil {
		return nil, fmt.Errorf("configuration errors: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field rules the individual values cannot.
func (c *Config) Validate() error {
	var errs []string

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Storage.Dir == "" {
			errs = append(errs, "STORAGE_DIR is required for the file backend")
		}
	case BackendPostgres:
		if c.Database.URL == "" {
			errs = append(errs, "DATABASE_URL is required for the postgres backend")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, "REDIS_ADDR is required for the redis backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("STORAGE_BACKEND %q is not one of memory, file, postgres, redis", c.Storage.Backend))
	}

	if c.IsProduction() {
		if len(c.WebSocket.AllowedOrigins) == 0 {
			errs = append(errs, "WS_ALLOWED_ORIGINS must be set in production")
		}
		if c.Storage.Backend == BackendMemory {
			errs = append(errs, "STORAGE_BACKEND=memory loses every ticket on restart and is not allowed in production")
		}
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = append(errs, "DB_MAX_IDLE_CONNS cannot be greater than DB_MAX_OPEN_CONNS")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.FormRPS <= 0) {
		errs = append(errs, "RATE_LIMIT_RPS and RATE_LIMIT_FORM_RPS must be positive when rate limiting is enabled")
	}
	if c.Logging.Format != "" && c.Logging.Format != "json" && c.Logging.Format != "text" {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT %q is not one of json, text", c.Logging.Format))
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}
	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// envReader reads typed values and remembers every one that failed to parse.
type envReader struct {
	errs []error
}

func (e *envReader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func readEnv[T any](e *envReader, key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s=%q: %w", key, raw, err))
		return def
	}
	return v
}

func (e *envReader) integer(key string, def int) int {
	return readEnv(e, key, def, strconv.Atoi)
}

func (e *envReader) float(key string, def float64) float64 {
	return readEnv(e, key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func (e *envReader) boolean(key string, def bool) bool {
	return readEnv(e, key, def, strconv.ParseBool)
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	return readEnv(e, key, def, time.ParseDuration)
}

// list splits a comma-separated value, dropping blanks.
func (e *envReader) list(key string) []string {
	out := []string{}
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// String is a log-safe summary with credentials removed.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Server: %s, Storage: %s, DB: %s, Redis: %s, RateLimit: %v, Environment: %s}",
		c.Server.Port,
		c.Storage.Backend,
		redactURL(c.Database.URL),
		c.Redis.Addr,
		c.RateLimit.Enabled,
		c.App.Environment,
	)
}

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[unparseable]"
	}
	return u.Redacted()
}
