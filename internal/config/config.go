// Package config defines the application configuration model and its loader.
package config

import (
	"fmt"
	"time"
)

// Config holds the application's configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Keys      KeysConfig      `mapstructure:"keys"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	CSRF      CSRFConfig      `mapstructure:"csrf"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Email     EmailConfig     `mapstructure:"email"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // seconds
	Debug        bool   `mapstructure:"debug"`
}

// DatabaseConfig holds the user-store connection settings. Driver selects
// postgres for deployments or sqlite for local development; with sqlite only
// Database (the file path) is consulted.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int    `mapstructure:"max_conns"`
}

// DSN renders the connection string for the postgres driver.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig holds the settings for the TTL key-value store.
type RedisConfig struct {
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  int    `mapstructure:"dial_timeout"`  // seconds
	ReadTimeout  int    `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // seconds
}

// KeysConfig locates the on-disk signing keypair.
type KeysConfig struct {
	Directory string `mapstructure:"directory"`
}

// JWTConfig holds token-lifetime settings. The codec itself never hardcodes
// validities; callers pass these through.
type JWTConfig struct {
	Issuer          string        `mapstructure:"issuer"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

// CSRFConfig holds CSRF token settings.
type CSRFConfig struct {
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// RateLimitConfig holds attempt-limiter thresholds and windows.
type RateLimitConfig struct {
	CaptchaThreshold   int           `mapstructure:"captcha_threshold"`
	AttemptWindow      time.Duration `mapstructure:"attempt_window"`
	RateLimitThreshold int           `mapstructure:"rate_limit_threshold"`
	CooldownWindow     time.Duration `mapstructure:"cooldown_window"`
}

// EmailConfig holds the async email pipeline settings.
type EmailConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	FromAddress string `mapstructure:"from_address"`
	Queue       string `mapstructure:"queue"`
	Concurrency int    `mapstructure:"concurrency"`
}

// AuditConfig holds the Kafka audit sink settings.
type AuditConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	if c.Keys.Directory == "" {
		return fmt.Errorf("keys.directory must be set")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr must be set")
	}
	if c.JWT.AccessTokenTTL <= 0 {
		return fmt.Errorf("jwt.access_token_ttl must be positive")
	}
	if c.JWT.RefreshTokenTTL <= c.JWT.AccessTokenTTL {
		return fmt.Errorf("jwt.refresh_token_ttl must exceed jwt.access_token_ttl")
	}
	if c.RateLimit.CaptchaThreshold <= 0 {
		return fmt.Errorf("rate_limit.captcha_threshold must be positive")
	}
	if c.RateLimit.RateLimitThreshold < c.RateLimit.CaptchaThreshold {
		return fmt.Errorf("rate_limit.rate_limit_threshold must not be below captcha_threshold")
	}
	if c.Audit.Enabled && len(c.Audit.Brokers) == 0 {
		return fmt.Errorf("audit.brokers must be set when audit is enabled")
	}
	return nil
}
