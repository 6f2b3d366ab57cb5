package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	DatabaseURL   string `env:"DATABASE_URL"`
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`

	JWTSecret      string        `env:"JWT_SECRET"`
	AccessTokenTTL time.Duration `env:"JWT_ACCESS_TOKEN_TTL" envDefault:"15m"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"10"`

	ServerHost      string        `env:"SERVER_HOST" envDefault:"localhost"`
	ServerPort      string        `env:"SERVER_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	Environment     string        `env:"ENV" envDefault:"development"`

	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	RateLimitEnabled       bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitIPAttempts    int           `env:"RATE_LIMIT_IP_ATTEMPTS" envDefault:"5"`
	RateLimitIPWindow      time.Duration `env:"RATE_LIMIT_IP_WINDOW" envDefault:"15m"`
	RateLimitUserAttempts  int           `env:"RATE_LIMIT_USER_ATTEMPTS" envDefault:"10"`
	RateLimitUserWindow    time.Duration `env:"RATE_LIMIT_USER_WINDOW" envDefault:"1h"`
	RateLimitBlockDuration time.Duration `env:"RATE_LIMIT_BLOCK_DURATION" envDefault:"30m"`
	RateLimitLoginRequests int           `env:"RATE_LIMIT_LOGIN_REQUESTS" envDefault:"30"`
	RateLimitLoginWindow   time.Duration `env:"RATE_LIMIT_LOGIN_WINDOW" envDefault:"1m"`

	NotifyRedisEnabled bool          `env:"NOTIFY_REDIS_ENABLED" envDefault:"false"`
	NotifyChannel      string        `env:"NOTIFY_CHANNEL" envDefault:"fleetlog:change-requests"`
	NotifyTimeout      time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"5s"`
	SSEHeartbeat       time.Duration `env:"SSE_HEARTBEAT" envDefault:"15s"`

	TracingEnabled      bool    `env:"TRACING_ENABLED" envDefault:"false"`
	TracingOTLPEndpoint string  `env:"TRACING_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingOTLPInsecure bool    `env:"TRACING_OTLP_INSECURE" envDefault:"true"`
	TracingSampleRatio  float64 `env:"TRACING_SAMPLE_RATIO" envDefault:"1"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	CORSEnabled          bool     `env:"CORS_ENABLED" envDefault:"true"`
	CORSAllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	CORSAllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
}

var (
	ErrMissingDatabaseURL   = errors.New("DATABASE_URL is required")
	ErrMissingJWTSecret     = errors.New("JWT_SECRET is required")
	ErrInvalidStorageDriver = errors.New("STORAGE_DRIVER must be postgres or memory")
	ErrInvalidTokenTTL      = errors.New("JWT_ACCESS_TOKEN_TTL must be positive")
	ErrMissingRedisURL      = errors.New("REDIS_URL is required when rate limiting or Redis notifications are enabled")
	ErrMissingOTLPEndpoint  = errors.New("TRACING_OTLP_ENDPOINT is required when tracing is enabled")
	ErrInvalidSampleRatio   = errors.New("TRACING_SAMPLE_RATIO must be between 0 and 1")
)

// Load reads .env when present, then the process environment
func Load() (*Config, error) {
	cfg, err := LoadUnvalidated()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadUnvalidated is Load without Validate, for tools that need only part of the configuration
func LoadUnvalidated() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: env.ToMap(os.Environ())}); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromMap parses configuration from the given variables only
func LoadFromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}
	case StorageDriverMemory:
	default:
		return ErrInvalidStorageDriver
	}

	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.AccessTokenTTL <= 0 {
		return ErrInvalidTokenTTL
	}
	if (c.RateLimitEnabled || c.NotifyRedisEnabled) && c.RedisURL == "" {
		return ErrMissingRedisURL
	}
	if c.TracingEnabled && c.TracingOTLPEndpoint == "" {
		return ErrMissingOTLPEndpoint
	}
	if c.TracingSampleRatio < 0 || c.TracingSampleRatio > 1 {
		return ErrInvalidSampleRatio
	}
	return nil
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.ServerHost, c.ServerPort)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
