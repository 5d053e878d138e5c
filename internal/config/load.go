package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix is prepended (with an underscore) to every environment
// variable the loader reads, e.g. TASKAPI_SERVER_PORT.
const envPrefix = "TASKAPI"

// Load reads configuration from environment variables and an optional
// .env file, applies defaults, and validates the result.
//
// Environment variables use the TASKAPI_ prefix with underscores
// separating nested keys: TASKAPI_DATABASE_URL maps to Database.URL.
// A .env file in the working directory is loaded first when present so
// local development does not require exporting variables by hand; real
// environment variables always take precedence over .env entries.
//
// It returns a non-nil *Config on success, or an error describing what
// failed to parse or validate.
func Load() (*Config, error) {
	// godotenv only fills in variables that are not already set, so a
	// missing .env file is not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers a default for every known key. Viper's
// AutomaticEnv only surfaces keys it has seen, so each key needs a
// default (possibly empty) for Unmarshal to pick up its env override.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.base_url", "http://localhost:8080")

	v.SetDefault("database.url", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080)
	v.SetDefault("auth.activation_token_lifetime_minutes", 1440)

	v.SetDefault("job.worker_count", 2)
	v.SetDefault("job.queue_size", 100)
	v.SetDefault("job.stuck_job_age_minutes", 30)
	v.SetDefault("job.scheduler_interval_minutes", 60)

	v.SetDefault("email.host", "")
	v.SetDefault("email.port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.register.requests", 5)
	v.SetDefault("rate_limit.register.window_seconds", 3600)
	v.SetDefault("rate_limit.login.requests", 10)
	v.SetDefault("rate_limit.login.window_seconds", 60)
	v.SetDefault("rate_limit.activation.requests", 10)
	v.SetDefault("rate_limit.activation.window_seconds", 3600)
	v.SetDefault("rate_limit.password.requests", 5)
	v.SetDefault("rate_limit.password.window_seconds", 3600)
	v.SetDefault("rate_limit.profile.requests", 120)
	v.SetDefault("rate_limit.profile.window_seconds", 60)
}
