package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Session SessionConfig `mapstructure:"session"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// BackendConfig holds decision-intel API configuration
type BackendConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	WSURL          string        `mapstructure:"ws_url"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
	CompanyID      int           `mapstructure:"company_id"`
}

// AuthConfig holds the optional startup login credentials
type AuthConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// SessionConfig holds session persistence configuration
type SessionConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// NotifyConfig holds Telegram notification configuration
type NotifyConfig struct {
	BotToken string        `mapstructure:"bot_token"`
	ChatID   string        `mapstructure:"chat_id"`
	Enabled  bool          `mapstructure:"enabled"`
	Cooldown time.Duration `mapstructure:"cooldown"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("PULSEBOARD")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.api_url", "http://localhost:8000")
	v.SetDefault("backend.poll_interval", "30s")
	v.SetDefault("backend.timeout", "15s")
	v.SetDefault("backend.max_retries", 3)
	v.SetDefault("backend.retry_delay_base", "1s")

	v.SetDefault("session.db_path", "./data/session.db")

	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.cooldown", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// WSBaseURL returns the WebSocket base URL, deriving it from the API URL
// when not configured explicitly.
func (c *Config) WSBaseURL() string {
	if c.Backend.WSURL != "" {
		return c.Backend.WSURL
	}
	ws := strings.Replace(c.Backend.APIURL, "https://", "wss://", 1)
	return strings.Replace(ws, "http://", "ws://", 1)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Backend.APIURL == "" {
		return fmt.Errorf("backend.api_url is required")
	}
	if c.Backend.PollInterval < 5*time.Second {
		return fmt.Errorf("backend.poll_interval must be at least 5 seconds")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive")
	}
	if c.Backend.MaxRetries < 1 {
		return fmt.Errorf("backend.max_retries must be at least 1")
	}
	if c.Backend.RetryDelayBase <= 0 {
		return fmt.Errorf("backend.retry_delay_base must be positive")
	}

	if (c.Auth.Email == "") != (c.Auth.Password == "") {
		return fmt.Errorf("auth.email and auth.password must be set together")
	}

	if c.Session.DBPath == "" {
		return fmt.Errorf("session.db_path is required")
	}

	if c.Notify.Enabled {
		if c.Notify.BotToken == "" {
			return fmt.Errorf("notify.bot_token is required when notify is enabled")
		}
		if c.Notify.ChatID == "" {
			return fmt.Errorf("notify.chat_id is required when notify is enabled")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
