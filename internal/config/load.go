// Package config defines the application's configuration structure and
// loading logic. Configuration is sourced from environment variables with
// the LINGOTALE_ prefix, validated before use.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables, applies defaults,
// and validates the result. Environment variables use the LINGOTALE_ prefix
// with underscores separating nested keys, e.g. LINGOTALE_SERVER_PORT or
// LINGOTALE_QUOTA_DAILY_LIMIT.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults for everything that has a sensible one. Secrets and
	// connection targets have no default and must be supplied.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)
	v.SetDefault("quota.daily_limit", 5)
	v.SetDefault("quota.time_zone", "Europe/Berlin")
	v.SetDefault("job.worker_count", 2)
	v.SetDefault("job.queue_size", 100)
	v.SetDefault("job.story_max_attempts", 3)
	v.SetDefault("job.word_status_max_attempts", 1)
	v.SetDefault("audio.storage_dir", "data/audio")
	v.SetDefault("audio.target_voice", "de-DE")
	v.SetDefault("audio.source_voice", "en-US")

	v.SetEnvPrefix("LINGOTALE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface variables for keys that were
	// never set, so bind every known key explicitly.
	for _, key := range []string{
		"server.port", "server.log_level",
		"database.url",
		"auth.jwt_secret", "auth.token_lifetime_minutes",
		"llm.gemini_api_key", "llm.model_name", "llm.max_retries", "llm.retry_delay_seconds",
		"quota.daily_limit", "quota.time_zone",
		"job.worker_count", "job.queue_size", "job.story_max_attempts", "job.word_status_max_attempts",
		"audio.storage_dir", "audio.tts_api_key", "audio.target_voice", "audio.source_voice",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}
