// Package config loads server settings from SAGRA_* environment variables
// and an optional sagra.yaml file.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. SAGRA_ADDR.
const EnvPrefix = "SAGRA"

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

var (
	ErrInvalidEnv       = errors.New("env must be development or production")
	ErrMissingCSRFKey   = errors.New("csrf_key is required in production")
	ErrInvalidCSRFKey   = errors.New("csrf_key must be 64 hex characters")
	ErrMissingDBPath    = errors.New("db_path is required")
	ErrInvalidRateLimit = errors.New("rate_limit_requests and rate_limit_interval must be positive")
	ErrInvalidEmail     = errors.New("invalid email address")
)

// Config holds every runtime setting.
type Config struct {
	Addr   string `mapstructure:"addr"`
	DBPath string `mapstructure:"db_path"`
	Env    string `mapstructure:"env"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // text or json; empty picks by Env
	Timezone  string `mapstructure:"timezone"`   // civil "today" for phase lookups

	CSRFKey        string   `mapstructure:"csrf_key"`
	TrustedOrigins []string `mapstructure:"trusted_origins"`

	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitInterval time.Duration `mapstructure:"rate_limit_interval"`
	SlowQueryMs       int           `mapstructure:"slow_query_ms"`
	SlowRequestMs     int           `mapstructure:"slow_request_ms"`

	ResendKey   string `mapstructure:"resend_key"`
	EmailFrom   string `mapstructure:"email_from"`
	ReplyTo     string `mapstructure:"reply_to"`
	NotifyEmail string `mapstructure:"notify_email"` // staff address for phase notifications; empty disables them

	OutboxInterval  time.Duration `mapstructure:"outbox_interval"`
	OutboxBaseDelay time.Duration `mapstructure:"outbox_base_delay"`
	OutboxMaxDelay  time.Duration `mapstructure:"outbox_max_delay"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("db_path", "sagra.db")
	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "")
	v.SetDefault("timezone", "America/Sao_Paulo")
	v.SetDefault("csrf_key", "")
	v.SetDefault("trusted_origins", []string{"localhost:8080", "127.0.0.1:8080"})
	v.SetDefault("rate_limit_requests", 20)
	v.SetDefault("rate_limit_interval", time.Second)
	v.SetDefault("slow_query_ms", 50)
	v.SetDefault("slow_request_ms", 200)
	v.SetDefault("resend_key", "")
	v.SetDefault("email_from", "SAGRA <noreply@sagra.local>")
	v.SetDefault("reply_to", "")
	v.SetDefault("notify_email", "")
	v.SetDefault("outbox_interval", time.Minute)
	v.SetDefault("outbox_base_delay", 30*time.Second)
	v.SetDefault("outbox_max_delay", time.Hour)
}

// Load reads configuration. configFile may be empty, in which case
// ./sagra.yaml is used when present. Environment variables win over the file.
// PRE: none
// POST: Returns a validated Config
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("sagra")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		slog.Debug("config_file_loaded", "path", v.ConfigFileUsed())
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values.
// PRE: none
// POST: Returns nil if the server can start with this configuration
func (c *Config) Validate() error {
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("%w: %q", ErrInvalidEnv, c.Env)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return ErrMissingDBPath
	}
	if c.CSRFKey == "" && c.IsProduction() {
		return ErrMissingCSRFKey
	}
	if c.CSRFKey != "" {
		if _, err := c.CSRFKeyBytes(); err != nil {
			return err
		}
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.RateLimitRequests <= 0 || c.RateLimitInterval <= 0 {
		return ErrInvalidRateLimit
	}
	for _, addr := range []string{c.NotifyEmail, c.ReplyTo} {
		if addr == "" {
			continue
		}
		if _, err := mail.ParseAddress(addr); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidEmail, addr)
		}
	}
	return nil
}

// IsProduction reports whether Env is production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// CSRFKeyBytes decodes the 32-byte CSRF authentication key.
func (c *Config) CSRFKeyBytes() ([]byte, error) {
	key, err := hex.DecodeString(c.CSRFKey)
	if err != nil || len(key) != 32 {
		return nil, ErrInvalidCSRFKey
	}
	return key, nil
}

// SlogLevel parses LogLevel (debug, info, warn, error).
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// JSONLogs reports whether logs should be JSON. Production defaults to JSON.
func (c *Config) JSONLogs() bool {
	if c.LogFormat != "" {
		return c.LogFormat == "json"
	}
	return c.IsProduction()
}

// Location loads Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return loc, nil
}
