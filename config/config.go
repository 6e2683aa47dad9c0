package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/jonwraymond/portalcache/localstore"
	"github.com/jonwraymond/portalcache/observe"
)

// ErrInvalid indicates a configuration value is out of range.
var ErrInvalid = errors.New("config: invalid value")

// Config holds portal client settings.
type Config struct {
	ServiceName string `env:"PORTAL_SERVICE_NAME" envDefault:"portalcache"`

	// APIBaseURL is the portal API root, e.g. https://portal.example.edu/api.
	APIBaseURL string `env:"PORTAL_API_BASE_URL,required"`
	// APIToken may be a literal token, a ${VAR} reference or a secretref.
	APIToken         string        `env:"PORTAL_API_TOKEN"`
	RequestTimeout   time.Duration `env:"PORTAL_REQUEST_TIMEOUT"   envDefault:"30s"`
	RetryAttempts    int           `env:"PORTAL_RETRY_ATTEMPTS"    envDefault:"1"`
	BreakerThreshold int           `env:"PORTAL_BREAKER_THRESHOLD" envDefault:"0"`
	BreakerCoolDown  time.Duration `env:"PORTAL_BREAKER_COOLDOWN"  envDefault:"30s"`
	HealthPath       string        `env:"PORTAL_HEALTH_PATH"       envDefault:"health"`

	CacheTTL          time.Duration `env:"PORTAL_CACHE_TTL"          envDefault:"5m"`
	CacheSingleflight bool          `env:"PORTAL_CACHE_SINGLEFLIGHT" envDefault:"false"`
	CacheSoftLimit    int           `env:"PORTAL_CACHE_SOFT_LIMIT"   envDefault:"10000"`

	DraftStore string `env:"PORTAL_DRAFT_STORE" envDefault:"file"`
	DraftPath  string `env:"PORTAL_DRAFT_PATH"  envDefault:".portal"`
	DraftKey   string `env:"PORTAL_DRAFT_KEY"   envDefault:"admission_draft"`

	RedisAddr     string        `env:"PORTAL_REDIS_ADDR"`
	RedisPassword string        `env:"PORTAL_REDIS_PASSWORD"`
	RedisDB       int           `env:"PORTAL_REDIS_DB"     envDefault:"0"`
	RedisPrefix   string        `env:"PORTAL_REDIS_PREFIX" envDefault:"portal"`
	RedisTTL      time.Duration `env:"PORTAL_REDIS_TTL"    envDefault:"0s"`

	LogLevel         string  `env:"PORTAL_LOG_LEVEL"          envDefault:"info"`
	MetricsExporter  string  `env:"PORTAL_METRICS_EXPORTER"   envDefault:"none"`
	TracingExporter  string  `env:"PORTAL_TRACING_EXPORTER"   envDefault:"none"`
	TracingSamplePct float64 `env:"PORTAL_TRACING_SAMPLE_PCT" envDefault:"1"`
}

// Load reads files into the environment with godotenv, skipping any that do
// not exist, then parses and validates the environment. Variables already set
// in the process take precedence over file values.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse builds a Config from an explicit variable set instead of the process
// environment.
func Parse(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated and numeric settings.
func (c Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.APIBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("%w: PORTAL_API_BASE_URL %q", ErrInvalid, c.APIBaseURL))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: PORTAL_REQUEST_TIMEOUT must be positive", ErrInvalid))
	}
	if c.RetryAttempts < 1 {
		errs = append(errs, fmt.Errorf("%w: PORTAL_RETRY_ATTEMPTS must be at least 1", ErrInvalid))
	}
	if c.BreakerThreshold < 0 {
		errs = append(errs, fmt.Errorf("%w: PORTAL_BREAKER_THRESHOLD must not be negative", ErrInvalid))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("%w: PORTAL_CACHE_TTL must not be negative", ErrInvalid))
	}
	if !slices.Contains(localstore.Backends, c.DraftStore) {
		errs = append(errs, fmt.Errorf("%w: PORTAL_DRAFT_STORE %q", ErrInvalid, c.DraftStore))
	}
	if c.DraftStore == localstore.BackendRedis && c.RedisAddr == "" {
		errs = append(errs, fmt.Errorf("%w: PORTAL_REDIS_ADDR is required for the redis draft store", ErrInvalid))
	}
	if err := localstore.ValidateKey(c.DraftKey); err != nil {
		errs = append(errs, fmt.Errorf("%w: PORTAL_DRAFT_KEY: %w", ErrInvalid, err))
	}
	obs := c.Observe()
	if err := obs.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	return errors.Join(errs...)
}

// Observe returns the telemetry configuration.
func (c Config) Observe() observe.Config {
	return observe.Config{
		ServiceName: c.ServiceName,
		Tracing: observe.TracingConfig{
			Enabled:   c.TracingExporter != "" && c.TracingExporter != "none",
			Exporter:  c.TracingExporter,
			SamplePct: c.TracingSamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.MetricsExporter != "" && c.MetricsExporter != "none",
			Exporter: c.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: c.LogLevel != "off",
			Level:   c.LogLevel,
		},
	}
}

// LocalStore returns the options for opening the draft store.
func (c Config) LocalStore() localstore.Options {
	return localstore.Options{
		Backend:       c.DraftStore,
		Path:          c.DraftPath,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		RedisPrefix:   c.RedisPrefix,
		RedisTTL:      c.RedisTTL,
	}
}
