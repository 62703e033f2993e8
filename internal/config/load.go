package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "PALACE"

// setDefaults registers the default value of every optional setting.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("auth.token_lifetime_minutes", 60*24)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 60*24*7)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("task.broker_url", "redis://localhost:6379/0")
	v.SetDefault("task.result_store_url", "redis://localhost:6379/0")
	v.SetDefault("task.result_ttl", "24h")
	v.SetDefault("task.hard_time_limit", "30m")
	v.SetDefault("task.soft_time_limit", "25m")
	v.SetDefault("task.max_jobs_per_worker", 1000)
	v.SetDefault("task.ai_queue_workers", 2)
	v.SetDefault("task.notification_queue_workers", 2)
	v.SetDefault("task.ai_queue_rate_limit", 0)
	v.SetDefault("task.notification_queue_rate_limit", 0)
	v.SetDefault("task.cleanup_schedule", "@every 1h")
	v.SetDefault("task.shutdown_timeout", "30s")
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so keys
	// without defaults are bound explicitly.
	for _, key := range []string{"database.url", "auth.jwt_secret"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
