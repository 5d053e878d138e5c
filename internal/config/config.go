package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"     validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"   validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"       validate:"required"`
	Job       JobConfig       `mapstructure:"job"        validate:"required"`
	Email     EmailConfig     `mapstructure:"email"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig contains all server-related configuration settings.
// BaseURL is the externally reachable address used when building links
// embedded in emails, such as account activation URLs.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	BaseURL  string `mapstructure:"base_url"  validate:"required,url"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
// Lifetimes are expressed in minutes.
type AuthConfig struct {
	JWTSecret                      string `mapstructure:"jwt_secret"                        validate:"required,min=32"`
	TokenLifetimeMinutes           int    `mapstructure:"token_lifetime_minutes"            validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes    int    `mapstructure:"refresh_token_lifetime_minutes"    validate:"required,gt=0"`
	ActivationTokenLifetimeMinutes int    `mapstructure:"activation_token_lifetime_minutes" validate:"required,gt=0"`
}

// JobConfig tunes the background job runner and the periodic scheduler.
type JobConfig struct {
	WorkerCount              int `mapstructure:"worker_count"               validate:"required,gte=1"`
	QueueSize                int `mapstructure:"queue_size"                 validate:"required,gte=1"`
	StuckJobAgeMinutes       int `mapstructure:"stuck_job_age_minutes"      validate:"required,gte=1"`
	SchedulerIntervalMinutes int `mapstructure:"scheduler_interval_minutes" validate:"required,gte=1"`
}

// EmailConfig holds SMTP settings for outgoing mail.
// An empty host disables email delivery; jobs then log instead of send.
type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"     validate:"gte=0,lt=65536"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"     validate:"omitempty,email"`
}

// RedisConfig holds connection settings for the Redis instance backing
// rate limiting and the refresh-token denylist. An empty address
// disables both features (the limiter fails open).
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// RateQuota is a fixed-window request allowance: Requests per
// WindowSeconds seconds.
type RateQuota struct {
	Requests      int `mapstructure:"requests"       validate:"gte=0"`
	WindowSeconds int `mapstructure:"window_seconds" validate:"gte=0"`
}

// RateLimitConfig carries the per-scope quotas enforced by the rate
// limiting middleware. Scopes mirror the sensitive endpoint groups:
// registration, login, account activation, password operations, and
// profile reads/writes.
type RateLimitConfig struct {
	Enabled    bool      `mapstructure:"enabled"`
	Register   RateQuota `mapstructure:"register"`
	Login      RateQuota `mapstructure:"login"`
	Activation RateQuota `mapstructure:"activation"`
	Password   RateQuota `mapstructure:"password"`
	Profile    RateQuota `mapstructure:"profile"`
}
