// Package config loads server configuration from defaults, an optional YAML
// file with ${VAR} expansion, and CAREVIA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Backends
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Media stores
const (
	MediaInline = "inline"
	MediaDir    = "dir"
	MediaS3     = "s3"
)

// Config is the complete server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Backend  string         `yaml:"backend" env:"CAREVIA_BACKEND"`
	Local    LocalConfig    `yaml:"local"`
	Remote   RemoteConfig   `yaml:"remote"`
	Media    MediaConfig    `yaml:"media"`
	Email    EmailConfig    `yaml:"email"`
	Logging  LoggingConfig  `yaml:"logging"`
	Database DatabaseConfig `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr          string `yaml:"addr" env:"CAREVIA_ADDR"`
	Env           string `yaml:"env" env:"CAREVIA_ENV"`
	CSRFKey       string `yaml:"csrf_key" env:"CAREVIA_CSRF_KEY"`
	SecureCookies bool   `yaml:"secure_cookies" env:"CAREVIA_SECURE_COOKIES"`
	SlowRequestMs int    `yaml:"slow_request_ms" env:"CAREVIA_SLOW_REQUEST_MS"`

	// TrustedOrigins are extra host[:port] values accepted by the CSRF origin check.
	TrustedOrigins     []string `yaml:"trusted_origins" env:"CAREVIA_TRUSTED_ORIGINS" envSeparator:","`
	RateLimitPerSecond int      `yaml:"rate_limit_per_second" env:"CAREVIA_RATE_LIMIT_PER_SECOND"`
}

// LocalConfig holds the single-node backend settings.
type LocalConfig struct {
	SQLitePath        string `yaml:"sqlite_path" env:"CAREVIA_SQLITE_PATH"`
	AdminUsername     string `yaml:"admin_username" env:"CAREVIA_ADMIN_USERNAME"`
	AdminPasswordHash string `yaml:"admin_password_hash" env:"CAREVIA_ADMIN_PASSWORD_HASH"`
}

// RemoteConfig holds the hosted backend settings.
type RemoteConfig struct {
	PostgresDSN string         `yaml:"postgres_dsn" env:"CAREVIA_POSTGRES_DSN"`
	Identity    IdentityConfig `yaml:"identity"`
}

// IdentityConfig holds the external identity service settings.
type IdentityConfig struct {
	URL       string `yaml:"url" env:"CAREVIA_IDENTITY_URL"`
	APIKey    string `yaml:"api_key" env:"CAREVIA_IDENTITY_API_KEY"`
	JWTSecret string `yaml:"jwt_secret" env:"CAREVIA_IDENTITY_JWT_SECRET"`
	AdminRole string `yaml:"admin_role" env:"CAREVIA_IDENTITY_ADMIN_ROLE"`
}

// MediaConfig holds media ingestion settings.
type MediaConfig struct {
	Store    string   `yaml:"store" env:"CAREVIA_MEDIA_STORE"`
	Dir      string   `yaml:"dir" env:"CAREVIA_MEDIA_DIR"`
	MaxBytes int      `yaml:"max_bytes" env:"CAREVIA_MEDIA_MAX_BYTES"`
	S3       S3Config `yaml:"s3"`
}

// S3Config holds S3-compatible object storage settings.
type S3Config struct {
	Endpoint      string `yaml:"endpoint" env:"CAREVIA_S3_ENDPOINT"`
	Region        string `yaml:"region" env:"CAREVIA_S3_REGION"`
	AccessKey     string `yaml:"access_key" env:"CAREVIA_S3_ACCESS_KEY"`
	SecretKey     string `yaml:"secret_key" env:"CAREVIA_S3_SECRET_KEY"`
	PublicURL     string `yaml:"public_url" env:"CAREVIA_S3_PUBLIC_URL"`
	GalleryBucket string `yaml:"gallery_bucket" env:"CAREVIA_S3_GALLERY_BUCKET"`
	StoriesBucket string `yaml:"stories_bucket" env:"CAREVIA_S3_STORIES_BUCKET"`
}

// EmailConfig holds contact notification settings.
type EmailConfig struct {
	ResendKey string   `yaml:"resend_key" env:"CAREVIA_RESEND_KEY"`
	From      string   `yaml:"from" env:"CAREVIA_EMAIL_FROM"`
	NotifyTo  []string `yaml:"notify_to" env:"CAREVIA_NOTIFY_TO" envSeparator:","`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"CAREVIA_LOG_LEVEL"`
	Format string `yaml:"format" env:"CAREVIA_LOG_FORMAT"`
}

// DatabaseConfig holds settings shared by both database backends.
type DatabaseConfig struct {
	SlowQueryMs int `yaml:"slow_query_ms" env:"CAREVIA_SLOW_QUERY_MS"`
}

// Default returns the development defaults.
func Default() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8080", Env: "development", SlowRequestMs: 200, RateLimitPerSecond: 10},
		Backend: BackendLocal,
		Local:   LocalConfig{SQLitePath: "carevia.db", AdminUsername: "admin"},
		Remote: RemoteConfig{Identity: IdentityConfig{
			AdminRole: "admin",
		}},
		Media: MediaConfig{
			Dir: "uploads",
			S3: S3Config{
				Region:        "us-east-1",
				GalleryBucket: "gallery",
				StoriesBucket: "stories",
			},
		},
		Email:    EmailConfig{From: "Carevia <noreply@carevia.org>"},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Database: DatabaseConfig{SlowQueryMs: 50},
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (skipped when path is empty), then environment variables, then validation.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDerived()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} with the environment value, or empty when unset.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

// applyDerived fills settings whose default depends on other settings.
func (c *Config) applyDerived() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Media.Store == "" {
		if c.Backend == BackendRemote {
			c.Media.Store = MediaS3
		} else {
			c.Media.Store = MediaInline
		}
	}
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.IsProduction() && c.Server.CSRFKey == "" {
		return errors.New("server.csrf_key is required in production")
	}
	if c.Server.CSRFKey != "" && len(c.Server.CSRFKey) != 32 {
		return errors.New("server.csrf_key must be exactly 32 bytes")
	}
	if c.Server.RateLimitPerSecond < 0 {
		return errors.New("server.rate_limit_per_second cannot be negative")
	}

	switch c.Backend {
	case BackendLocal:
		if c.Local.SQLitePath == "" {
			return errors.New("local.sqlite_path is required for the local backend")
		}
		if c.Local.AdminUsername == "" {
			return errors.New("local.admin_username is required for the local backend")
		}
		if c.IsProduction() && c.Local.AdminPasswordHash == "" {
			return errors.New("local.admin_password_hash is required in production")
		}
	case BackendRemote:
		if c.Remote.PostgresDSN == "" {
			return errors.New("remote.postgres_dsn is required for the remote backend")
		}
		if c.Remote.Identity.URL == "" || c.Remote.Identity.JWTSecret == "" {
			return errors.New("remote.identity.url and remote.identity.jwt_secret are required for the remote backend")
		}
	default:
		return fmt.Errorf("backend must be %q or %q, got %q", BackendLocal, BackendRemote, c.Backend)
	}

	switch c.Media.Store {
	case MediaInline:
	case MediaDir:
		if c.Media.Dir == "" {
			return errors.New("media.dir is required for the dir media store")
		}
	case MediaS3:
		if c.Media.S3.PublicURL == "" {
			return errors.New("media.s3.public_url is required for the s3 media store")
		}
		if c.Media.S3.GalleryBucket == "" || c.Media.S3.StoriesBucket == "" {
			return errors.New("media.s3 bucket names are required for the s3 media store")
		}
	default:
		return fmt.Errorf("media.store must be inline, dir or s3, got %q", c.Media.Store)
	}
	if c.Media.MaxBytes < 0 {
		return errors.New("media.max_bytes cannot be negative")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}
