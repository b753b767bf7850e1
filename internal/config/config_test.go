package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octanews/authcore/pkg/constants"
)

func validConfig() *Config {
	return &Config{
		Keys:  KeysConfig{Directory: "keys"},
		Redis: RedisConfig{Addr: "localhost:6379"},
		JWT: JWTConfig{
			AccessTokenTTL:  2 * time.Hour,
			RefreshTokenTTL: 14 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			CaptchaThreshold:   5,
			RateLimitThreshold: 10,
		},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, constants.DefaultIssuer, cfg.JWT.Issuer)
	assert.Equal(t, constants.AccessTokenDefaultTTL, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, constants.RefreshTokenDefaultTTL, cfg.JWT.RefreshTokenTTL)
	assert.Equal(t, constants.CaptchaThresholdDefault, cfg.RateLimit.CaptchaThreshold)
	assert.False(t, cfg.Email.Enabled)
	assert.False(t, cfg.Audit.Enabled)
}

func TestValidate_Accepts(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing keys directory", func(c *Config) { c.Keys.Directory = "" }},
		{"missing redis addr", func(c *Config) { c.Redis.Addr = "" }},
		{"non-positive access ttl", func(c *Config) { c.JWT.AccessTokenTTL = 0 }},
		{"refresh ttl below access ttl", func(c *Config) { c.JWT.RefreshTokenTTL = time.Hour }},
		{"non-positive captcha threshold", func(c *Config) { c.RateLimit.CaptchaThreshold = 0 }},
		{"hard threshold below captcha threshold", func(c *Config) { c.RateLimit.RateLimitThreshold = 2 }},
		{"audit enabled without brokers", func(c *Config) { c.Audit.Enabled = true }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db.internal", Port: 5432, User: "authcore",
		Password: "secret", Database: "authcore", SSLMode: "require",
	}
	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "dbname=authcore")
	assert.Contains(t, dsn, "sslmode=require")
}
