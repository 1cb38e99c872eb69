package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/teamboardhq/teamboard/pkg/config"
)

// defaultJWTSecret is the development-only fallback; non-development
// environments must override it.
const defaultJWTSecret = "change-this-to-a-secure-secret"

// Config holds all configuration for the TeamBoard server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost          string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort          int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser          string `env:"POSTGRES_USER" envDefault:"teamboard"`
	PostgresPass          string `env:"POSTGRES_PASSWORD" envDefault:"teamboard_secret"`
	PostgresDB            string `env:"POSTGRES_DB_NAME" envDefault:"teamboard"`
	PostgresSSL           string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	DBMaxConns            int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32  `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int    `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int    `env:"DB_MAX_CONN_IDLE_MINUTES" envDefault:"15"`

	// Redis (login/forgot-password rate limiting)
	RedisHost        string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort        int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword    string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB          int    `env:"REDIS_DB" envDefault:"0"`
	RateLimitPerMin  int    `env:"AUTH_RATE_LIMIT_PER_MINUTE" envDefault:"10"`
	RateLimitEnabled bool   `env:"AUTH_RATE_LIMIT_ENABLED" envDefault:"true"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT
	JWTSecret             string `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTAccessExpiry       string `env:"JWT_ACCESS_TOKEN_EXPIRY" envDefault:"24h"`
	JWTRefreshExpiry      string `env:"JWT_REFRESH_TOKEN_EXPIRY" envDefault:"168h"`
	JWTVerificationExpiry string `env:"JWT_VERIFICATION_TOKEN_EXPIRY" envDefault:"24h"`
	JWTResetExpiry        string `env:"JWT_RESET_TOKEN_EXPIRY" envDefault:"24h"`

	// Server-side window for password reset links. Shorter than the signed
	// reset token lifetime on purpose: the stored expiry is the one that counts.
	PasswordResetWindowMins int `env:"PASSWORD_RESET_WINDOW_MINUTES" envDefault:"60"`

	// Frontend base URL used in verification and reset links.
	FrontendBaseURL string `env:"FRONTEND_BASE_URL" envDefault:"http://localhost:3000"`

	// Mail worker
	MailProviderURL        string `env:"MAIL_PROVIDER_URL" envDefault:"http://localhost:8025/api/send"`
	MailAPIKey             string `env:"MAIL_API_KEY" envDefault:""`
	MailFrom               string `env:"MAIL_FROM" envDefault:"TeamBoard <no-reply@teamboard.local>"`
	MailConsumerGroup      string `env:"MAIL_CONSUMER_GROUP" envDefault:"teamboard-mailworker"`
	MailIdempotencyTTLMins int    `env:"MAIL_IDEMPOTENCY_TTL_MINUTES" envDefault:"60"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// pprof (empty list disables the endpoints)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load server config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}

	// In non-development environments, require an explicitly set, strong JWT secret.
	if cfg.Environment != "development" {
		if cfg.JWTSecret == defaultJWTSecret {
			return nil, fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
		if len(cfg.JWTSecret) < 32 {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(cfg.JWTSecret))
		}
	}

	if _, err := cfg.TokenExpiries(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// TokenExpiries parses the four token expiry durations.
type Expiries struct {
	Access       time.Duration
	Refresh      time.Duration
	Verification time.Duration
	Reset        time.Duration
}

// TokenExpiries parses and validates the configured token lifetimes.
func (c *Config) TokenExpiries() (Expiries, error) {
	var e Expiries
	var err error

	if e.Access, err = time.ParseDuration(c.JWTAccessExpiry); err != nil {
		return e, fmt.Errorf("parse JWT access expiry %q: %w", c.JWTAccessExpiry, err)
	}
	if e.Refresh, err = time.ParseDuration(c.JWTRefreshExpiry); err != nil {
		return e, fmt.Errorf("parse JWT refresh expiry %q: %w", c.JWTRefreshExpiry, err)
	}
	if e.Verification, err = time.ParseDuration(c.JWTVerificationExpiry); err != nil {
		return e, fmt.Errorf("parse JWT verification expiry %q: %w", c.JWTVerificationExpiry, err)
	}
	if e.Reset, err = time.ParseDuration(c.JWTResetExpiry); err != nil {
		return e, fmt.Errorf("parse JWT reset expiry %q: %w", c.JWTResetExpiry, err)
	}

	return e, nil
}

// MailIdempotencyTTL returns how long processed mail event IDs are remembered.
func (c *Config) MailIdempotencyTTL() time.Duration {
	return time.Duration(c.MailIdempotencyTTLMins) * time.Minute
}

// PasswordResetWindow returns the server-side reset link validity window.
func (c *Config) PasswordResetWindow() time.Duration {
	return time.Duration(c.PasswordResetWindowMins) * time.Minute
}

// IsProduction reports whether the server runs in production mode. Session
// cookies are only marked Secure/SameSite=None in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
