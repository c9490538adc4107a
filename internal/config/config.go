package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Quota    QuotaConfig    `mapstructure:"quota"    validate:"required"`
	Job      JobConfig      `mapstructure:"job"      validate:"required"`
	Audio    AudioConfig    `mapstructure:"audio"    validate:"required"`
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
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"      validate:"required"`
	ModelName         string `mapstructure:"model_name"          validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0,lte=60"`
}

// QuotaConfig controls the per-user daily story generation limit.
// TimeZone names the IANA location whose midnight is the quota reset
// boundary, so the limit always resets at the same local time.
type QuotaConfig struct {
	DailyLimit int    `mapstructure:"daily_limit" validate:"required,gt=0"`
	TimeZone   string `mapstructure:"time_zone"   validate:"required"`
}

// JobConfig controls the background job queue and worker pool.
// Max attempt counts are configured per job kind.
type JobConfig struct {
	WorkerCount           int `mapstructure:"worker_count"             validate:"required,gt=0"`
	QueueSize             int `mapstructure:"queue_size"               validate:"required,gt=0"`
	StoryMaxAttempts      int `mapstructure:"story_max_attempts"       validate:"required,gt=0"`
	WordStatusMaxAttempts int `mapstructure:"word_status_max_attempts" validate:"required,gt=0"`
}

// AudioConfig contains settings for speech synthesis and generated audio
// artifact storage. Voice codes are BCP-47 language tags.
type AudioConfig struct {
	StorageDir  string `mapstructure:"storage_dir"   validate:"required"`
	TTSAPIKey   string `mapstructure:"tts_api_key"   validate:"required"`
	TargetVoice string `mapstructure:"target_voice"  validate:"required"`
	SourceVoice string `mapstructure:"source_voice"  validate:"required"`
}
