// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/robfig/cron/v3"

	"github.com/todolist/todolist/internal/auth"
)

// ErrConfiguration marks a configuration problem that must stop the process at startup.
var ErrConfiguration = errors.New("invalid configuration")

// MinJWTSecretLength is the minimum accepted length of JWT_SECRET in bytes.
const MinJWTSecretLength = 32

// Mail drivers.
const (
	MailDriverSMTP  = "smtp"
	MailDriverRelay = "relay"
	MailDriverLog   = "log"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL          string        `env:"REDIS_URL,required"`
	RedisPoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	PrincipalCacheTTL time.Duration `env:"PRINCIPAL_CACHE_TTL" envDefault:"5m"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Tokens. The secret is removed from the environment once parsed.
	JWTSecret        string `env:"JWT_SECRET,required,unset"`
	JWTIssuer        string `env:"JWT_ISSUER" envDefault:"todolist-api"`
	TokenExpiryHours int    `env:"TOKEN_EXPIRY_HOURS" envDefault:"12"`

	// Auth cookie
	AuthCookieName   string `env:"AUTH_COOKIE_NAME" envDefault:"todo_token"`
	AuthCookieSecure bool   `env:"AUTH_COOKIE_SECURE" envDefault:"true"`

	// Password hashing cost (argon2id)
	PasswordHashTime     uint32 `env:"PASSWORD_HASH_TIME" envDefault:"3"`
	PasswordHashMemoryKB uint32 `env:"PASSWORD_HASH_MEMORY_KB" envDefault:"65536"`
	PasswordHashThreads  uint8  `env:"PASSWORD_HASH_THREADS" envDefault:"4"`

	// Reminder sweep
	ReminderEnabled   bool          `env:"REMINDER_ENABLED" envDefault:"true"`
	ReminderInterval  time.Duration `env:"REMINDER_INTERVAL" envDefault:"1h"`
	ReminderSchedule  string        `env:"REMINDER_SCHEDULE" envDefault:""`
	ReminderLookahead time.Duration `env:"REMINDER_LOOKAHEAD" envDefault:"24h"`

	// Outbound mail
	MailDriver      string        `env:"MAIL_DRIVER" envDefault:"smtp"`
	MailSenderName  string        `env:"MAIL_SENDER_NAME" envDefault:"ToDo List"`
	MailSenderEmail string        `env:"MAIL_SENDER_EMAIL" envDefault:""`
	MailTimeout     time.Duration `env:"MAIL_TIMEOUT" envDefault:"15s"`
	SMTPHost        string        `env:"SMTP_HOST" envDefault:""`
	SMTPPort        int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername    string        `env:"SMTP_USERNAME" envDefault:""`
	SMTPPassword    string        `env:"SMTP_PASSWORD,unset" envDefault:""`
	SMTPRequireTLS  bool          `env:"SMTP_REQUIRE_TLS" envDefault:"true"`
	MailRelayURL    string        `env:"MAIL_RELAY_URL" envDefault:""`
	MailRelaySecret string        `env:"MAIL_RELAY_SECRET,unset" envDefault:""`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimRight(strings.TrimSpace(origin), "/")
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Argon2Params returns the password hashing cost.
func (c *Config) Argon2Params() auth.Argon2Params {
	return auth.Argon2Params{
		Time:    c.PasswordHashTime,
		Memory:  c.PasswordHashMemoryKB,
		Threads: c.PasswordHashThreads,
	}
}

// Validate checks cross-field constraints that struct tags cannot express.
// Every returned error wraps ErrConfiguration.
func (c *Config) Validate() error {
	if len(c.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("%w: JWT_SECRET must be at least %d characters", ErrConfiguration, MinJWTSecretLength)
	}
	if c.TokenExpiryHours <= 0 {
		return fmt.Errorf("%w: TOKEN_EXPIRY_HOURS must be positive", ErrConfiguration)
	}
	if err := c.Argon2Params().Validate(); err != nil {
		return fmt.Errorf("%w: PASSWORD_HASH_*: %v", ErrConfiguration, err)
	}

	if c.ReminderEnabled {
		if err := c.validateReminder(); err != nil {
			return err
		}
		if err := c.validateMail(); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validateReminder() error {
	if c.ReminderSchedule != "" {
		if _, err := cron.ParseStandard(c.ReminderSchedule); err != nil {
			return fmt.Errorf("%w: REMINDER_SCHEDULE: %v", ErrConfiguration, err)
		}
	} else if c.ReminderInterval < time.Second {
		return fmt.Errorf("%w: REMINDER_INTERVAL must be at least 1s", ErrConfiguration)
	}
	if c.ReminderLookahead <= 0 {
		return fmt.Errorf("%w: REMINDER_LOOKAHEAD must be positive", ErrConfiguration)
	}
	return nil
}

func (c *Config) validateMail() error {
	switch c.MailDriver {
	case MailDriverSMTP:
		if c.SMTPHost == "" || c.MailSenderEmail == "" {
			return fmt.Errorf("%w: SMTP_HOST and MAIL_SENDER_EMAIL are required for the smtp mail driver", ErrConfiguration)
		}
		if c.SMTPUsername != "" && c.SMTPPassword == "" {
			return fmt.Errorf("%w: SMTP_PASSWORD is required when SMTP_USERNAME is set", ErrConfiguration)
		}
	case MailDriverRelay:
		if c.MailRelayURL == "" || c.MailRelaySecret == "" {
			return fmt.Errorf("%w: MAIL_RELAY_URL and MAIL_RELAY_SECRET are required for the relay mail driver", ErrConfiguration)
		}
	case MailDriverLog:
		if c.IsProduction() {
			return fmt.Errorf("%w: the log mail driver is not allowed in production", ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown MAIL_DRIVER %q", ErrConfiguration, c.MailDriver)
	}
	return nil
}

// Load parses environment variables and returns a validated Config.
// Returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}
	cfg.MailDriver = strings.ToLower(strings.TrimSpace(cfg.MailDriver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
