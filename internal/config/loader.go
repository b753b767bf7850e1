package config

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/octanews/authcore/pkg/constants"
	"github.com/octanews/authcore/pkg/errors"
)

// Load reads configuration from an optional YAML file and AUTHCORE_-prefixed
// environment variables. Missing file is not an error; defaults apply.
func Load() (*Config, error) {
	v := newViper()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.ErrConfiguration("failed to read config file").WithCause(err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.ErrConfiguration("failed to unmarshal config").WithCause(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.ErrConfiguration(err.Error())
	}

	return &cfg, nil
}

// Watch re-reads the configuration whenever the file changes and invokes
// onChange with the fresh copy. Invalid edits are ignored so a bad deploy of
// the config file cannot take down a running instance.
func Watch(onChange func(*Config)) {
	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		return
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			return
		}
		if err := cfg.Validate(); err != nil {
			return
		}
		onChange(&cfg)
	})
	v.WatchConfig()
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5)
	v.SetDefault("redis.read_timeout", 3)
	v.SetDefault("redis.write_timeout", 3)
	v.SetDefault("keys.directory", "keys")
	v.SetDefault("jwt.issuer", constants.DefaultIssuer)
	v.SetDefault("jwt.access_token_ttl", constants.AccessTokenDefaultTTL)
	v.SetDefault("jwt.refresh_token_ttl", constants.RefreshTokenDefaultTTL)
	v.SetDefault("csrf.token_ttl", constants.CSRFTokenDefaultTTL)
	v.SetDefault("rate_limit.captcha_threshold", constants.CaptchaThresholdDefault)
	v.SetDefault("rate_limit.attempt_window", constants.AttemptWindowDefault)
	v.SetDefault("rate_limit.rate_limit_threshold", constants.RateLimitThresholdDefault)
	v.SetDefault("rate_limit.cooldown_window", constants.CooldownWindowDefault)
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.queue", "email")
	v.SetDefault("email.concurrency", 4)
	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.topic", "authcore.audit")
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/authcore/")
	v.AddConfigPath(".")

	v.SetEnvPrefix("AUTHCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}
