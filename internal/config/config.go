// Package config loads projectgrid configuration from an optional YAML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"dconn.dev/projectgrid/internal/logging"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig   `koanf:"server"`
	API     APIConfig      `koanf:"api"`
	Upload  UploadConfig   `koanf:"upload"`
	Status  StatusConfig   `koanf:"status"`
	Session SessionConfig  `koanf:"session"`
	UI      UIConfig       `koanf:"ui"`
	Log     logging.Config `koanf:"log"`
}

// ServerConfig holds the frontend HTTP server settings
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// APIConfig points at the projects API
type APIConfig struct {
	BaseURL      string        `koanf:"base_url"`
	Timeout      time.Duration `koanf:"timeout"`
	MaxBodyBytes int64         `koanf:"max_body_bytes"`
}

// UploadConfig limits what the upload form accepts
type UploadConfig struct {
	MaxBytes int64 `koanf:"max_bytes"`
}

// StatusConfig controls the transient status banner
type StatusConfig struct {
	TTL time.Duration `koanf:"ttl"`
}

// SessionConfig controls how long an idle browser session is kept
type SessionConfig struct {
	IdleTimeout time.Duration `koanf:"idle_timeout"`
}

// UIConfig holds presentation settings
type UIConfig struct {
	DateLayout string `koanf:"date_layout"`
	PrettyHTML bool   `koanf:"pretty_html"`
}

const (
	DefaultServerAddr   = ":8080"
	DefaultAPIBaseURL   = "http://localhost:5000/api"
	DefaultAPITimeout   = 10 * time.Second
	DefaultMaxBodyBytes = 8 << 20
	DefaultUploadMax    = 100 << 20
	DefaultStatusTTL    = 5 * time.Second
	DefaultSessionIdle  = 30 * time.Minute
	DefaultDateLayout   = "02/01/2006"
)

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultAPIBaseURL
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = DefaultAPITimeout
	}
	if cfg.API.MaxBodyBytes == 0 {
		cfg.API.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Upload.MaxBytes == 0 {
		cfg.Upload.MaxBytes = DefaultUploadMax
	}
	if cfg.Status.TTL == 0 {
		cfg.Status.TTL = DefaultStatusTTL
	}
	if cfg.Session.IdleTimeout == 0 {
		cfg.Session.IdleTimeout = DefaultSessionIdle
	}
	if cfg.UI.DateLayout == "" {
		cfg.UI.DateLayout = DefaultDateLayout
	}

	logDefaults := logging.NewDefaultConfig()
	if cfg.Log.Level == "" {
		cfg.Log.Level = logDefaults.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = logDefaults.Format
	}
	if cfg.Log.Fields == nil {
		cfg.Log.Fields = logDefaults.Fields
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		errs = append(errs, fmt.Errorf("api.base_url: %w", err))
	} else if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url must be an absolute http(s) URL, got %q", c.API.BaseURL))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, errors.New("api.timeout cannot be negative"))
	}
	if c.API.MaxBodyBytes < 0 {
		errs = append(errs, errors.New("api.max_body_bytes cannot be negative"))
	}
	if c.Upload.MaxBytes < 0 {
		errs = append(errs, errors.New("upload.max_bytes cannot be negative"))
	}
	if c.Status.TTL <= 0 {
		errs = append(errs, errors.New("status.ttl must be > 0"))
	}
	if c.Session.IdleTimeout < 0 {
		errs = append(errs, errors.New("session.idle_timeout cannot be negative"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}
