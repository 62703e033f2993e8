package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gtfield=TokenLifetimeMinutes"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"required,gte=4,lte=31"`
}

// TaskConfig configures the background task transport and the workers that
// consume it.
type TaskConfig struct {
	// BrokerURL selects the job transport. redis:// and memory:// are supported.
	BrokerURL string `mapstructure:"broker_url" validate:"required"`

	// ResultStoreURL selects where job state is kept. It may point at the same
	// Redis instance as the broker.
	ResultStoreURL string `mapstructure:"result_store_url" validate:"required"`

	// ResultTTL is how long job records are retained after their last update.
	ResultTTL time.Duration `mapstructure:"result_ttl" validate:"required,gt=0"`

	HardTimeLimit time.Duration `mapstructure:"hard_time_limit" validate:"required,gt=0"`
	SoftTimeLimit time.Duration `mapstructure:"soft_time_limit" validate:"required,gt=0,ltfield=HardTimeLimit"`

	// MaxJobsPerWorker bounds how many jobs a worker slot runs before it is
	// replaced with a fresh one.
	MaxJobsPerWorker int `mapstructure:"max_jobs_per_worker" validate:"required,gt=0"`

	AIQueueWorkers           int `mapstructure:"ai_queue_workers"           validate:"gte=0"`
	NotificationQueueWorkers int `mapstructure:"notification_queue_workers" validate:"gte=0"`

	// Per-queue claim rate limits in jobs per second. Zero disables the limit.
	AIQueueRateLimit           float64 `mapstructure:"ai_queue_rate_limit"           validate:"gte=0"`
	NotificationQueueRateLimit float64 `mapstructure:"notification_queue_rate_limit" validate:"gte=0"`

	// CleanupSchedule is the cron expression used by the periodic trigger.
	CleanupSchedule string `mapstructure:"cleanup_schedule" validate:"required"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`
}
