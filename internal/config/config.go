// Package config loads and normalises loginform configuration files.
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Its-donkey/loginform/internal/ui/forms"
)

const (
	defaultAddr            = "127.0.0.1"
	defaultPort            = ":4173"
	defaultStore           = "memory"
	defaultSQLitePath      = "data/users.db"
	defaultTokenTTLSeconds = 43200
	defaultSubmitTimeout   = 10
	defaultLogLevel        = "info"
	defaultLogMaxSizeMB    = 10
	defaultLogMaxFiles     = 5

	postgresDSNEnv = "LOGINFORM_POSTGRES_DSN"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
	Port string `json:"port" yaml:"port"`
	// Templates optionally overrides the embedded page templates.
	Templates string `json:"templates" yaml:"templates"`
}

// Listen returns the host:port the server binds to.
func (s ServerConfig) Listen() string {
	port := strings.TrimPrefix(s.Port, ":")
	return net.JoinHostPort(s.Addr, port)
}

// UserConfig seeds an account at startup. Exactly one of Password or
// PasswordHash should be set.
type UserConfig struct {
	Email        string `json:"email" yaml:"email"`
	Password     string `json:"password,omitempty" yaml:"password,omitempty"`
	PasswordHash string `json:"password_hash,omitempty" yaml:"password_hash,omitempty"`
}

// AuthConfig selects the user store and session lifetime.
type AuthConfig struct {
	Store           string       `json:"store" yaml:"store"`
	SQLitePath      string       `json:"sqlite_path" yaml:"sqlite_path"`
	PostgresDSN     string       `json:"postgres_dsn" yaml:"postgres_dsn"`
	TokenTTLSeconds int          `json:"token_ttl_seconds" yaml:"token_ttl_seconds"`
	RejectMessage   string       `json:"reject_message" yaml:"reject_message"`
	Users           []UserConfig `json:"users" yaml:"users"`
}

// TokenTTL returns the session lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLSeconds) * time.Second
}

// FormConfig tunes validation and submission.
type FormConfig struct {
	MinPasswordLength    int            `json:"min_password_length" yaml:"min_password_length"`
	ValidateOnChange     bool           `json:"validate_on_change" yaml:"validate_on_change"`
	SubmitTimeoutSeconds int            `json:"submit_timeout_seconds" yaml:"submit_timeout_seconds"`
	Messages             forms.Messages `json:"messages" yaml:"messages"`
}

// SubmitTimeout bounds how long a front-end waits for a submission.
func (f FormConfig) SubmitTimeout() time.Duration {
	return time.Duration(f.SubmitTimeoutSeconds) * time.Second
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level     string `json:"level" yaml:"level"`
	Dir       string `json:"dir" yaml:"dir"`
	MaxSizeMB int    `json:"max_size_mb" yaml:"max_size_mb"`
	MaxFiles  int    `json:"max_files" yaml:"max_files"`
}

// Config represents the combined runtime settings.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Auth    AuthConfig    `json:"auth" yaml:"auth"`
	Form    FormConfig    `json:"form" yaml:"form"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	var cfg Config
	applyDefaults(&cfg)
	return cfg
}

// Load reads the config at path. Files ending in .yaml or .yml are decoded as
// YAML, everything else as JSON. An empty path yields Default().
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config: %w", err)
		}
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	cfg.Server.Addr = strings.TrimSpace(cfg.Server.Addr)
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultAddr
	}
	if strings.TrimSpace(cfg.Server.Port) == "" {
		cfg.Server.Port = defaultPort
	}
	if !strings.HasPrefix(cfg.Server.Port, ":") {
		cfg.Server.Port = ":" + cfg.Server.Port
	}

	cfg.Auth.Store = strings.ToLower(strings.TrimSpace(cfg.Auth.Store))
	if cfg.Auth.Store == "" {
		cfg.Auth.Store = defaultStore
	}
	if cfg.Auth.SQLitePath == "" {
		cfg.Auth.SQLitePath = defaultSQLitePath
	}
	if cfg.Auth.PostgresDSN == "" {
		cfg.Auth.PostgresDSN = strings.TrimSpace(os.Getenv(postgresDSNEnv))
	}
	if cfg.Auth.TokenTTLSeconds <= 0 {
		cfg.Auth.TokenTTLSeconds = defaultTokenTTLSeconds
	}
	for i := range cfg.Auth.Users {
		cfg.Auth.Users[i].Email = strings.TrimSpace(cfg.Auth.Users[i].Email)
	}

	if cfg.Form.MinPasswordLength < 0 {
		cfg.Form.MinPasswordLength = 0
	}
	if cfg.Form.SubmitTimeoutSeconds <= 0 {
		cfg.Form.SubmitTimeoutSeconds = defaultSubmitTimeout
	}
	cfg.Form.Messages = cfg.Form.Messages.WithDefaults()

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLogLevel
	}
	if cfg.Logging.MaxSizeMB <= 0 {
		cfg.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if cfg.Logging.MaxFiles <= 0 {
		cfg.Logging.MaxFiles = defaultLogMaxFiles
	}
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	switch c.Auth.Store {
	case "memory", "sqlite":
	case "postgres":
		if c.Auth.PostgresDSN == "" {
			return fmt.Errorf("auth.store postgres requires auth.postgres_dsn or %s", postgresDSNEnv)
		}
	default:
		return fmt.Errorf("unknown auth.store %q", c.Auth.Store)
	}
	for i, u := range c.Auth.Users {
		if !forms.LooksLikeEmail(u.Email) {
			return fmt.Errorf("auth.users[%d]: invalid email %q", i, u.Email)
		}
		if (u.Password == "") == (u.PasswordHash == "") {
			return fmt.Errorf("auth.users[%d]: set exactly one of password or password_hash", i)
		}
	}
	return nil
}
