package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Address      string          `mapstructure:"address"`
	Env          string          `mapstructure:"env"`
	ServiceName  string          `mapstructure:"service_name"`
	TelemetryURL string          `mapstructure:"telemetry_url"`
	Ollama       OllamaConfig    `mapstructure:"ollama"`
	Log          LogConfig       `mapstructure:"log"`
	Metrics      MetricsConfig   `mapstructure:"metrics"`
	CORS         CORSConfig      `mapstructure:"cors"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`
	Limits       LimitsConfig    `mapstructure:"limits"`
}

// OllamaConfig describes the inference server. A zero Timeout disables the
// client-side deadline.
type OllamaConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	DefaultModel string        `mapstructure:"default_model"`
	Temperature  float64       `mapstructure:"temperature"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig limits requests per client IP; zero disables it.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

// LimitsConfig bounds request sizes; zero MaxInputBytes means unlimited text.
type LimitsConfig struct {
	MaxInputBytes  int   `mapstructure:"max_input_bytes"`
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// allow environment variables like TAILOR_OLLAMA_BASE_URL
	v.SetEnvPrefix("TAILOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// don't fail if config file is missing, allow env-only config
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// setDefaults also registers every key so AutomaticEnv can see it on Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("address", ":5000")
	v.SetDefault("env", "development")
	v.SetDefault("service_name", "resume-tailor")
	v.SetDefault("telemetry_url", "")

	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.default_model", "phi3")
	v.SetDefault("ollama.temperature", 0.7)
	v.SetDefault("ollama.timeout", "0s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("rate_limit.requests_per_minute", 0)

	v.SetDefault("limits.max_input_bytes", 0)
	v.SetDefault("limits.max_upload_bytes", 10<<20)
}
