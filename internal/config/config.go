// Package config загружает конфигурацию сервера из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix префикс переменных окружения: ENVDEV_HTTP_ADDR, ENVDEV_JWT_SECRET, ...
const Prefix = "ENVDEV"

// Server holds the configuration parameters for the server.
type Server struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	DatabasePath    string        `envconfig:"DATABASE_PATH" default:"./data/envdev.db"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	JWT        JWT        `envconfig:"JWT"`
	Encryption Encryption `envconfig:"ENCRYPTION"`

	// AdminEmails регистрируются сразу с ролью admin
	AdminEmails []string `envconfig:"ADMIN_EMAILS"`
	BcryptCost  int      `envconfig:"BCRYPT_COST" default:"12"`
}

// JWT holds token signing configuration
type JWT struct {
	Secret          string        `envconfig:"SECRET" required:"true"`
	Issuer          string        `envconfig:"ISSUER" default:"envdev"`
	AccessTokenTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTokenTTL time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"168h"`
}

// Encryption holds the master secret for sealing stored values.
// Ключ выводится из Key и Salt через argon2id при старте.
type Encryption struct {
	Key  string `envconfig:"KEY" required:"true"`
	Salt string `envconfig:"SALT" default:"envdev-master-key"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Server, error) {
	var cfg Server
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values envconfig cannot check by tags.
func (c *Server) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret cannot be empty")
	}
	if c.Encryption.Key == "" {
		return fmt.Errorf("encryption key cannot be empty")
	}
	if c.JWT.AccessTokenTTL <= 0 || c.JWT.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if c.JWT.AccessTokenTTL >= c.JWT.RefreshTokenTTL {
		return fmt.Errorf("access token TTL must be shorter than refresh token TTL")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	if c.Encryption.Salt == "" {
		return fmt.Errorf("encryption salt cannot be empty")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	admins := c.AdminEmails[:0]
	for _, email := range c.AdminEmails {
		if email = strings.TrimSpace(email); email != "" {
			admins = append(admins, email)
		}
	}
	c.AdminEmails = admins

	return nil
}

// SlogLevel переводит LOG_LEVEL в slog.Level
func (c *Server) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
