package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Worker   WorkerConfig   `mapstructure:"worker"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Blob     BlobConfig     `mapstructure:"blob"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

// WorkerConfig contains settings for the worker process itself.
type WorkerConfig struct {
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// ArchiveDir is the vault inbox directory that receives generated notes.
	ArchiveDir string `mapstructure:"archive_dir" validate:"required"`

	// SpoolDir holds temporary image downloads. Empty means the OS temp dir.
	SpoolDir string `mapstructure:"spool_dir"`

	// FetchTimeout bounds a single image download.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" validate:"required"`

	// GenerateTimeout bounds a single generation call.
	GenerateTimeout time.Duration `mapstructure:"generate_timeout" validate:"required"`

	// StoreTimeout bounds a single queue store write.
	StoreTimeout time.Duration `mapstructure:"store_timeout" validate:"required"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// LLMConfig contains all generation service related settings.
// A missing API key is a fatal startup condition.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName    string `mapstructure:"model_name"     validate:"required"`
}

// BlobConfig contains settings for the image blob store.
// Bucket may be empty when image captures are not in use; blob deletion
// becomes a no-op in that case.
type BlobConfig struct {
	Bucket string `mapstructure:"bucket"`
}

// NotifyConfig contains push notification settings. An empty topic URL
// disables notifications entirely.
type NotifyConfig struct {
	// TopicURL is the full ntfy topic endpoint, e.g. https://ntfy.sh/captures.
	TopicURL string `mapstructure:"topic_url"`
}
