package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for all environment variables read by Load,
// e.g. CAPTURE_LLM_GEMINI_API_KEY maps to llm.gemini_api_key.
const envPrefix = "CAPTURE"

// configKeys lists every setting so each can be bound to its environment
// variable explicitly. Viper's AutomaticEnv does not surface unbound keys
// through Unmarshal, so the binding has to be explicit.
var configKeys = []string{
	"worker.log_level",
	"worker.archive_dir",
	"worker.spool_dir",
	"worker.fetch_timeout",
	"worker.generate_timeout",
	"worker.store_timeout",
	"database.url",
	"llm.gemini_api_key",
	"llm.model_name",
	"blob.bucket",
	"notify.topic_url",
}

// Load reads configuration from environment variables, applies defaults,
// and validates the result. Returns a populated Config struct or an error
// if loading or validation fails. A missing generation-service credential
// or database URL fails startup.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("worker.log_level", "info")
	v.SetDefault("worker.fetch_timeout", 30*time.Second)
	v.SetDefault("worker.generate_timeout", 3*time.Minute)
	v.SetDefault("worker.store_timeout", 10*time.Second)
	v.SetDefault("llm.model_name", "gemini-2.5-pro")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind config key %q: %w", key, err)
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
