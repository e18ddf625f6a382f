// Package config loads application settings from config.json and the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	GeminiAPIKey        string        `mapstructure:"gemini_api_key"`
	TextModel           string        `mapstructure:"text_model"`
	ImageModel          string        `mapstructure:"image_model"`
	Addr                string        `mapstructure:"addr"`
	AllowedOrigins      []string      `mapstructure:"allowed_origins"`
	RecommendationCount int           `mapstructure:"recommendation_count"`
	GenerationTimeout   time.Duration `mapstructure:"generation_timeout"`
	ImageMaxWidth       uint          `mapstructure:"image_max_width"`
	LogLevel            string        `mapstructure:"log_level"`
	Development         bool          `mapstructure:"development"`
}

// ErrMissingAPIKey is returned when no Gemini API key is configured.
var ErrMissingAPIKey = errors.New("gemini_api_key is not set")

// Load reads config.json from dir when present, then applies environment
// overrides. GEMINI_API_KEY and API_KEY both set the API key.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config.json: %w", err)
		}
	}

	v.AutomaticEnv()
	if err := v.BindEnv("gemini_api_key", "GEMINI_API_KEY", "API_KEY"); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.GeminiAPIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("text_model", "gemini-2.5-flash")
	v.SetDefault("image_model", "imagen-4.0-generate-001")
	v.SetDefault("addr", ":8080")
	v.SetDefault("allowed_origins", []string{"http://localhost:8081"})
	v.SetDefault("recommendation_count", 10)
	v.SetDefault("generation_timeout", 45*time.Second)
	v.SetDefault("image_max_width", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("development", false)
}
