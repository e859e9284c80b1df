package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	Cache   CacheConfig
	Gateway GatewayConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SMARTCAL_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"SMARTCAL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SMARTCAL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig locates the scheduling backend. BaseURL is the one fatal startup
// condition: every code path that talks to the API needs it.
type APIConfig struct {
	BaseURL string        `envconfig:"SMARTCAL_API_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"SMARTCAL_API_TIMEOUT" default:"15s"`
}

func (a APIConfig) validate() error {
	base := strings.TrimSpace(a.BaseURL)
	if base == "" {
		return fmt.Errorf("%s is required", EnvAPIBaseURL)
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return fmt.Errorf("%s must be an http(s) URL, got %q", EnvAPIBaseURL, base)
	}
	if a.Timeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvAPITimeout)
	}
	return nil
}

// SessionConfig controls where durable client state (token, active tenant id,
// cached session user) lives for this process.
type SessionConfig struct {
	Backend string `envconfig:"SMARTCAL_SESSION_BACKEND" default:"file"`
	Dir     string `envconfig:"SMARTCAL_SESSION_DIR"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SMARTCAL_REDIS_URL"`
	Address      string        `envconfig:"SMARTCAL_REDIS_ADDR"`
	Password     string        `envconfig:"SMARTCAL_REDIS_PASSWORD"`
	DB           int           `envconfig:"SMARTCAL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SMARTCAL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SMARTCAL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SMARTCAL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SMARTCAL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SMARTCAL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CacheConfig enables the optional local snapshot cache used by the CLI for
// offline display of the last fetched swaps and hour summaries.
type CacheConfig struct {
	Enabled bool   `envconfig:"SMARTCAL_CACHE_ENABLED" default:"false"`
	Path    string `envconfig:"SMARTCAL_CACHE_PATH"`
}

type GatewayConfig struct {
	Port string `envconfig:"SMARTCAL_GATEWAY_PORT" default:"8080"`
}
