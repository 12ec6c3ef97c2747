package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App   AppConfig
	Log   LogConfig
	HTTP  HTTPConfig
	ERP   ERPConfig
	Store StoreConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
}

// ERPConfig holds vendor ERP connection settings
type ERPConfig struct {
	Type              string // vendor selector, e.g. "lemonsoft"
	BaseURL           string
	APIKey            string
	Database          string // vendor company database name
	TimeoutSeconds    int
	LineRetryAttempts int
	LineRetryDelay    time.Duration
}

// StoreConfig holds pending-store persistence settings
type StoreConfig struct {
	FilePath        string        // JSON backup file location
	Retention       time.Duration // drop pending offers older than this
	CleanupInterval time.Duration // how often the cleanup pass runs
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with OFFERFLOW_ prefix (e.g., OFFERFLOW_ERP_API_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("OFFERFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
		},
		ERP: ERPConfig{
			Type:              v.GetString("erp.type"),
			BaseURL:           v.GetString("erp.base_url"),
			APIKey:            v.GetString("erp.api_key"),
			Database:          v.GetString("erp.database"),
			TimeoutSeconds:    v.GetInt("erp.timeout_seconds"),
			LineRetryAttempts: v.GetInt("erp.line_retry_attempts"),
			LineRetryDelay:    v.GetDuration("erp.line_retry_delay"),
		},
		Store: StoreConfig{
			FilePath:        v.GetString("store.file_path"),
			Retention:       v.GetDuration("store.retention"),
			CleanupInterval: v.GetDuration("store.cleanup_interval"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "offerflow-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	// NOTE: CORS origins are intentionally not given a default fallback.
	// An empty list means no cross-origin requests are allowed until the
	// frontend origin is explicitly configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cfg.ERP.Type == "" {
		cfg.ERP.Type = "lemonsoft"
	}
	if cfg.ERP.TimeoutSeconds == 0 {
		cfg.ERP.TimeoutSeconds = 30
	}
	if cfg.ERP.LineRetryAttempts == 0 {
		cfg.ERP.LineRetryAttempts = 3
	}
	if cfg.ERP.LineRetryDelay == 0 {
		cfg.ERP.LineRetryDelay = 500 * time.Millisecond
	}
	if cfg.Store.FilePath == "" {
		cfg.Store.FilePath = "pending_offers.json"
	}
	if cfg.Store.Retention == 0 {
		cfg.Store.Retention = 7 * 24 * time.Hour
	}
	if cfg.Store.CleanupInterval == 0 {
		cfg.Store.CleanupInterval = time.Hour
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.ERP.LineRetryAttempts < 1 {
		return fmt.Errorf("erp.line_retry_attempts must be at least 1")
	}
	if c.Store.Retention <= 0 {
		return fmt.Errorf("store.retention must be positive")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.ERP.BaseURL == "" {
			return fmt.Errorf("erp.base_url is required in production")
		}
		if c.ERP.APIKey == "" {
			return fmt.Errorf("erp.api_key is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}
