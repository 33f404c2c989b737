// Package config loads the service configuration from the environment and an
// optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env      string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// CORSAllowedOrigins is a comma-separated list of origins.
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`

	JWTSecret      string `mapstructure:"JWT_SECRET"`
	JWTIssuer      string `mapstructure:"JWT_ISSUER"`
	JWTAudience    string `mapstructure:"JWT_AUDIENCE"`
	JWTAccessTTL   string `mapstructure:"JWT_ACCESS_TTL"`
	JWTRefreshTTL  string `mapstructure:"JWT_REFRESH_TTL"`
	SessionMaxAge  string `mapstructure:"SESSION_MAX_AGE"`
	BcryptCost     int    `mapstructure:"BCRYPT_COST"`
	LoginMaxFails  int    `mapstructure:"LOGIN_MAX_FAILURES"`
	LoginLockout   string `mapstructure:"LOGIN_LOCKOUT_WINDOW"`
	DefaultTZ      string `mapstructure:"DEFAULT_TIMEZONE"`
	InsightsTTL    string `mapstructure:"INSIGHTS_CACHE_TTL"`
	ReconcileEvery string `mapstructure:"RECONCILE_INTERVAL"`

	MailHost string `mapstructure:"MAIL_HOST"`
	MailPort int    `mapstructure:"MAIL_PORT"`
	MailUser string `mapstructure:"MAIL_USER"`
	MailPass string `mapstructure:"MAIL_PASS"`
	MailFrom string `mapstructure:"MAIL_FROM"`

	// When set, outbound email goes through the Resend HTTP API instead of SMTP.
	ResendAPIKey  string `mapstructure:"RESEND_API_KEY"`
	ResendBaseURL string `mapstructure:"RESEND_BASE_URL"`

	ZoomAccountID    string `mapstructure:"ZOOM_ACCOUNT_ID"`
	ZoomClientID     string `mapstructure:"ZOOM_CLIENT_ID"`
	ZoomClientSecret string `mapstructure:"ZOOM_CLIENT_SECRET"`
	ZoomBaseURL      string `mapstructure:"ZOOM_BASE_URL"`
	ZoomTokenURL     string `mapstructure:"ZOOM_TOKEN_URL"`

	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	AWSRegion    string `mapstructure:"AWS_REGION"`
	ExportBucket string `mapstructure:"EXPORT_S3_BUCKET"`
}

// Load reads .env (if present) and the environment. Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // missing .env is fine

	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "donor-crm")
	v.SetDefault("JWT_AUDIENCE", "donor-crm-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h")
	v.SetDefault("SESSION_MAX_AGE", "720h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("LOGIN_MAX_FAILURES", 5)
	v.SetDefault("LOGIN_LOCKOUT_WINDOW", "15m")
	v.SetDefault("DEFAULT_TIMEZONE", "UTC")
	v.SetDefault("INSIGHTS_CACHE_TTL", "30s")
	v.SetDefault("RECONCILE_INTERVAL", "10m")
	v.SetDefault("MAIL_HOST", "")
	v.SetDefault("MAIL_PORT", 587)
	v.SetDefault("MAIL_USER", "")
	v.SetDefault("MAIL_PASS", "")
	v.SetDefault("MAIL_FROM", "no-reply@donorcrm.org")
	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("RESEND_BASE_URL", "https://api.resend.com")
	v.SetDefault("ZOOM_ACCOUNT_ID", "")
	v.SetDefault("ZOOM_CLIENT_ID", "")
	v.SetDefault("ZOOM_CLIENT_SECRET", "")
	v.SetDefault("ZOOM_BASE_URL", "https://api.zoom.us/v2")
	v.SetDefault("ZOOM_TOKEN_URL", "https://zoom.us/oauth/token")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("EXPORT_S3_BUCKET", "")
}

func (c *Config) validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: HTTP_ADDR must be set")
	}
	if c.Env == "production" && len(c.JWTSecret) < 32 {
		return errors.New("config: JWT_SECRET must be at least 32 bytes in production")
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if c.LoginMaxFails <= 0 {
		return errors.New("config: LOGIN_MAX_FAILURES must be positive")
	}
	if _, err := time.LoadLocation(c.DefaultTZ); err != nil {
		return errors.New("config: DEFAULT_TIMEZONE is not a valid IANA zone")
	}
	return nil
}

func duration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func (c *Config) AccessTTL() time.Duration  { return positive(duration(c.JWTAccessTTL, 15*time.Minute), 15*time.Minute) }
func (c *Config) RefreshTTL() time.Duration { return positive(duration(c.JWTRefreshTTL, 168*time.Hour), 168*time.Hour) }

// MaxSessionAge caps the sliding refresh window.
func (c *Config) MaxSessionAge() time.Duration {
	return positive(duration(c.SessionMaxAge, 720*time.Hour), 720*time.Hour)
}

func (c *Config) LockoutWindow() time.Duration {
	return positive(duration(c.LoginLockout, 15*time.Minute), 15*time.Minute)
}

// InsightsCacheTTL of zero disables the insight cache.
func (c *Config) InsightsCacheTTL() time.Duration { return duration(c.InsightsTTL, 30*time.Second) }

func (c *Config) ReconcileInterval() time.Duration {
	return positive(duration(c.ReconcileEvery, 10*time.Minute), 10*time.Minute)
}

func (c *Config) AllowedOrigins() []string {
	if c == nil || c.CORSAllowedOrigins == "" {
		return nil
	}
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) ZoomEnabled() bool {
	return c.ZoomAccountID != "" && c.ZoomClientID != "" && c.ZoomClientSecret != ""
}

func positive(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
