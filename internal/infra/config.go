package infra

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const insecureSessionSecret = "change-me-in-production"

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"warcamp"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"warcamp"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"warcamp"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns  int32  `env:"DB_MIN_CONNS" envDefault:"1"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	// Session
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"change-me-in-production"`
	SessionExpiry time.Duration `env:"SESSION_EXPIRY" envDefault:"168h"`
	SessionCookie string        `env:"SESSION_COOKIE" envDefault:"warcamp_session"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"false"`

	// HTTP
	APIPort            int    `env:"API_PORT" envDefault:"3100"`
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	LoginRateLimit     int    `env:"LOGIN_RATE_LIMIT" envDefault:"10"`

	// Uploads
	UploadDir       string `env:"UPLOAD_DIR" envDefault:"uploads"`
	UploadURLPrefix string `env:"UPLOAD_URL_PREFIX" envDefault:"/uploads"`
	MaxImageBytes   int64  `env:"MAX_IMAGE_BYTES" envDefault:"5242880"`

	// Campaign rules
	RosterReview bool `env:"ROSTER_REVIEW" envDefault:"false"`

	// Kafka
	KafkaBrokers       string        `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled       bool          `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaTopicPrefix   string        `env:"KAFKA_TOPIC_PREFIX" envDefault:"warcamp"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"500ms"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig parses environment variables into a Config struct. A .env file
// in the working directory is loaded first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for insecure configuration that must not run in production.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass the secret checks (local dev only).
func (c *Config) Validate() error {
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be positive, got %d", c.MaxImageBytes)
	}
	if c.DBMaxConns < 1 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.LoginRateLimit < 1 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be at least 1, got %d", c.LoginRateLimit)
	}
	if c.SessionExpiry <= 0 {
		return fmt.Errorf("SESSION_EXPIRY must be positive, got %s", c.SessionExpiry)
	}
	if !strings.HasPrefix(c.UploadURLPrefix, "/") {
		return fmt.Errorf("UPLOAD_URL_PREFIX must start with '/', got %q", c.UploadURLPrefix)
	}
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.SessionSecret == insecureSessionSecret {
		return fmt.Errorf("SESSION_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET is too short (%d chars); minimum 32 characters required", len(c.SessionSecret))
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
