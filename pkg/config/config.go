package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/gokaycavdar/tickzero-landing/pkg/locale"
)

// EnvPrefix prefixes every variable read by Load.
const EnvPrefix = "LANDING_"

// Storage backends.
const (
	BackendCookie = "cookie"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

var ErrUnknownBackend = errors.New("config: unknown storage backend")

// Config is the server configuration.
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	SiteDir    string `env:"SITE_DIR" envDefault:"./site"`

	Storage       string        `env:"STORAGE" envDefault:"cookie"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RedisTTL      time.Duration `env:"REDIS_TTL" envDefault:"8760h"`

	MemoryMaxKeys int `env:"MEMORY_MAX_KEYS" envDefault:"100000"`

	GeoIPCityDB string `env:"GEOIP_CITY_DB"`

	CookieMaxAge time.Duration `env:"COOKIE_MAX_AGE" envDefault:"8760h"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`
	CookieDomain string        `env:"COOKIE_DOMAIN"`

	DismissDelay   time.Duration `env:"DISMISS_DELAY" envDefault:"400ms"`
	BaseLanguage   string        `env:"BASE_LANGUAGE" envDefault:"en"`
	TrustedProxies []string      `env:"TRUSTED_PROXIES" envSeparator:","`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads .env files (missing ones are ignored) and then the
// environment.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: EnvPrefix})
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Storage {
	case BackendCookie, BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("config: %sREDIS_ADDR is required for the redis backend", EnvPrefix)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Storage)
	}

	if !locale.IsSupported(c.BaseLanguage) {
		return fmt.Errorf("config: base language %q is not supported", c.BaseLanguage)
	}
	if c.DismissDelay < 0 {
		return fmt.Errorf("config: negative dismiss delay %s", c.DismissDelay)
	}
	return nil
}
