// Package config defines and loads the application configuration.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables use the
// TASKHUB_ prefix with underscores for nesting (e.g. TASKHUB_SERVER_PORT)
// and take precedence over file values. Returns a validated Config or an
// error describing what is missing or malformed.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults for everything that has a sensible one. Secrets and
	// connection URLs must come from the environment.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", 10)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("queue.queue", "task_notifications")
	v.SetDefault("queue.publish_timeout_seconds", 5)
	v.SetDefault("queue.connect_attempts", 5)
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080)
	v.SetDefault("auth.bcrypt_cost", 12)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; the environment carries everything.
	}

	v.SetEnvPrefix("TASKHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv does not surface env-only keys through Unmarshal unless
	// they are bound explicitly.
	for _, key := range []string{
		"server.port", "server.log_level", "server.shutdown_timeout",
		"database.url",
		"redis.addr", "redis.password", "redis.db",
		"queue.queue", "queue.publish_timeout_seconds", "queue.connect_attempts",
		"auth.jwt_secret", "auth.token_lifetime_minutes",
		"auth.refresh_token_lifetime_minutes", "auth.bcrypt_cost",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
