package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config holds process-wide settings.  Values come from the environment,
// optionally seeded from a .env file in the working directory.
type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	OpenAIAPIKey  string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel   string        `mapstructure:"OPENAI_MODEL"`
	Temperature   float32       `mapstructure:"LLM_TEMPERATURE"`
	Timeout       time.Duration `mapstructure:"LLM_TIMEOUT"`
	JSONMode      bool          `mapstructure:"LLM_JSON_MODE"`
}

// Load reads the configuration.  A missing API key is not an error here: the
// LLM client refuses to construct without one, which keeps the check next to
// the code that needs the credential.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("LLM_TEMPERATURE", 0.2)
	v.SetDefault("LLM_TIMEOUT", "60s")
	v.SetDefault("LLM_JSON_MODE", true)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
		"LLM_TEMPERATURE", "LLM_TIMEOUT", "LLM_JSON_MODE",
	} {
		_ = v.BindEnv(key)
	}

	// .env is optional, but one that exists must be readable
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDev reports whether the process runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate rejects settings that would make every LLM call fail.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive, got %s", c.Timeout)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got %v", c.Temperature)
	}
	if c.OpenAIModel == "" {
		return fmt.Errorf("OPENAI_MODEL must not be empty")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}
