package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the API server
type Config struct {
	Server    ServerConfig    `yaml:"server" json:"server"`
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
	API       APIConfig       `yaml:"api" json:"api"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port"`
	APIPrefix       string        `yaml:"api_prefix" json:"api_prefix"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// Addr returns the host:port the server listens on
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// InstagramConfig holds the session used against Instagram. Account names
// a stored credential to load when SessionID is empty. BaseURL overrides
// https://www.instagram.com, e.g. for a proxy.
type InstagramConfig struct {
	BaseURL   string        `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	SessionID string        `yaml:"session_id" json:"session_id"`
	CSRFToken string        `yaml:"csrf_token" json:"csrf_token"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
	AppID     string        `yaml:"app_id" json:"app_id"`
	Account   string        `yaml:"account" json:"account"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

// RateLimitConfig throttles and retries outbound requests to Instagram
type RateLimitConfig struct {
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	MaxRetries        int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay" json:"retry_delay"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier" json:"backoff_multiplier"`
}

// APIConfig controls what inbound clients may do. RequestsPerMinute of 0
// disables inbound limiting; an empty APIKey disables key checks.
type APIConfig struct {
	RequestsPerMinute int      `yaml:"requests_per_minute" json:"requests_per_minute"`
	APIKey            string   `yaml:"api_key" json:"api_key"`
	CORSOrigins       []string `yaml:"cors_origins" json:"cors_origins"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	File   string `yaml:"file" json:"file"`
	Format string `yaml:"format" json:"format"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			APIPrefix:       "/api/v1",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Instagram: InstagramConfig{
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			AppID:     "936619743392459",
			Timeout:   30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			MaxRetries:        3,
			RetryDelay:        time.Second,
			BackoffMultiplier: 2.0,
		},
		API: APIConfig{
			RequestsPerMinute: 30,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadFromEnv overrides fields from IGAPI_* environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	setString("IGAPI_HOST", &c.Server.Host)
	setInt("IGAPI_PORT", &c.Server.Port)
	setString("IGAPI_API_PREFIX", &c.Server.APIPrefix)

	setString("IGAPI_INSTAGRAM_BASE_URL", &c.Instagram.BaseURL)
	setString("IGAPI_SESSION_ID", &c.Instagram.SessionID)
	setString("IGAPI_CSRF_TOKEN", &c.Instagram.CSRFToken)
	setString("IGAPI_USER_AGENT", &c.Instagram.UserAgent)
	setString("IGAPI_ACCOUNT", &c.Instagram.Account)
	setDuration("IGAPI_INSTAGRAM_TIMEOUT", &c.Instagram.Timeout)

	setInt("IGAPI_UPSTREAM_REQUESTS_PER_MINUTE", &c.RateLimit.RequestsPerMinute)
	setInt("IGAPI_MAX_RETRIES", &c.RateLimit.MaxRetries)

	setInt("IGAPI_RATE_LIMIT_PER_MINUTE", &c.API.RequestsPerMinute)
	setString("IGAPI_API_KEY", &c.API.APIKey)
	if origins := os.Getenv("IGAPI_CORS_ORIGINS"); origins != "" {
		c.API.CORSOrigins = splitList(origins)
	}

	setString("IGAPI_LOG_LEVEL", &c.Logging.Level)
	setString("IGAPI_LOG_FILE", &c.Logging.File)
	setString("IGAPI_LOG_FORMAT", &c.Logging.Format)

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadFromFile loads configuration from a YAML file. An empty path
// searches the default locations; finding nothing there is not an error.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// DefaultConfigPath is where `igapi config init` writes
func DefaultConfigPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "igapi", "config.yaml")
}

func findConfigFile() string {
	locations := []string{
		".igapi.yaml",
		".igapi.yml",
		DefaultConfigPath(),
		filepath.Join(os.Getenv("HOME"), ".config", "igapi", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, errors.New("server port must be between 1 and 65535"))
	}
	if c.Server.APIPrefix != "" && !strings.HasPrefix(c.Server.APIPrefix, "/") {
		errs = append(errs, errors.New("api prefix must start with /"))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("shutdown timeout cannot be negative"))
	}

	if b := c.Instagram.BaseURL; b != "" && !strings.HasPrefix(b, "http://") && !strings.HasPrefix(b, "https://") {
		errs = append(errs, errors.New("instagram base url must be http or https"))
	}
	if c.Instagram.Timeout <= 0 {
		errs = append(errs, errors.New("instagram timeout must be positive"))
	}
	if c.Instagram.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("upstream requests per minute must be positive"))
	}
	if c.RateLimit.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}
	if c.RateLimit.BackoffMultiplier < 1 {
		errs = append(errs, errors.New("backoff multiplier must be at least 1"))
	}

	if c.API.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("api requests per minute cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "console", "json":
	default:
		errs = append(errs, errors.New("log format must be console or json"))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags applies flag values set on the command line
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if host, ok := flags["host"].(string); ok && host != "" {
		c.Server.Host = host
	}
	if port, ok := flags["port"].(int); ok && port > 0 {
		c.Server.Port = port
	}
	if account, ok := flags["account"].(string); ok && account != "" {
		c.Instagram.Account = account
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if format, ok := flags["log-format"].(string); ok && format != "" {
		c.Logging.Format = format
	}
}

// Load loads configuration from all sources.
// Precedence: command line flags > environment variables > .env file >
// config file > defaults.
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igapi.env"))

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg.MergeCommandLineFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
