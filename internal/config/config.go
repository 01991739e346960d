package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// devSessionSecret signs sessions in development when SESSION_SECRET is unset.
const devSessionSecret = "incomeatlas-development-session-secret"

// MinSessionSecretLength is the shortest SESSION_SECRET production accepts.
const MinSessionSecretLength = 32

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	// Application
	AppEnv string
	Port   string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string
	SeedOnStart  bool

	// Session
	SessionSecret string
	SessionMaxAge time.Duration

	// HTTP
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RateLimitRPS   float64
	RateLimitBurst int

	// Observability (optional)
	SentryDSN string
}

// Load reads configuration from the environment (and a .env file when
// present). Production refuses to start without a strong session secret.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	appEnv := envString("APP_ENV", "development")

	cfg := &Config{
		// Application
		AppEnv: appEnv,
		Port:   envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/incomeatlas.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),
		SeedOnStart:  envBool("SEED_ON_START", appEnv == "development"),

		// Session
		SessionSecret: envString("SESSION_SECRET", ""),
		SessionMaxAge: envDuration("SESSION_MAX_AGE", 720*time.Hour), // 30 days

		// HTTP
		ReadTimeout:    envDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   envDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		RateLimitRPS:   envFloat("RATE_LIMIT_RPS", 30),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 60),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),
	}

	err = cfg.validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.AppEnv != "development" && c.AppEnv != "production" {
		return fmt.Errorf("%w: APP_ENV must be development or production, got %q", ErrInvalidConfig, c.AppEnv)
	}

	if c.DBDriver != "sqlite" && c.DBDriver != "pgx" {
		return fmt.Errorf("%w: DB_DRIVER must be sqlite or pgx, got %q", ErrInvalidConfig, c.DBDriver)
	}

	// Production: fail closed on a missing or weak secret
	if c.IsProduction() {
		if len(c.SessionSecret) < MinSessionSecretLength {
			return fmt.Errorf("%w: production requires SESSION_SECRET of at least %d bytes", ErrInvalidConfig, MinSessionSecretLength)
		}
	} else if c.SessionSecret == "" {
		slog.Warn("SESSION_SECRET not set, using the development secret")
		c.SessionSecret = devSessionSecret
	}

	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("%w: SESSION_MAX_AGE must be positive", ErrInvalidConfig)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("%w: RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive", ErrInvalidConfig)
	}

	return nil
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envFloat(key string, def float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("config invalid float, using default", "key", key, "value", v, "default", def)
		return def
	}
	return f
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
