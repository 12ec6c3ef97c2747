package lemonsoft

import (
	"errors"
	"time"
)

var (
	ErrConfigMissingBaseURL  = errors.New("lemonsoft: base URL is required")
	ErrConfigMissingAPIKey   = errors.New("lemonsoft: API key is required")
	ErrConfigMissingDatabase = errors.New("lemonsoft: company database is required")
)

// Config holds Lemonsoft API connection settings
type Config struct {
	BaseURL  string
	APIKey   string
	Database string // Lemonsoft company database name

	TimeoutSeconds    int
	LineRetryAttempts int           // per-line retries on row numbering collisions
	LineRetryDelay    time.Duration // delay between per-line retries
}

// Validate checks required fields and applies defaults
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.APIKey == "" {
		return ErrConfigMissingAPIKey
	}
	if c.Database == "" {
		return ErrConfigMissingDatabase
	}

	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.LineRetryAttempts <= 0 {
		c.LineRetryAttempts = 3
	}
	if c.LineRetryDelay <= 0 {
		c.LineRetryDelay = 500 * time.Millisecond
	}
	return nil
}
