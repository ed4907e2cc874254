package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/carcustomizer/internal/bootstrap"
	"github.com/lehigh-university-libraries/carcustomizer/internal/providers"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ProviderGemini = "gemini"
	ProviderRelay  = "relay"
	ProviderOpenAI = "openai"
)

type Config struct {
	Provider string
	Gemini   ProviderConfig
	OpenAI   ProviderConfig
	RelayURL string
	Server   ServerConfig
	LogLevel slog.Level
}

type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type ServerConfig struct {
	Port           string
	MaxUploadBytes int64
	RequestTimeout time.Duration
}

// flagKeys maps command line flags to configuration keys
var flagKeys = map[string]string{
	"provider":  "provider",
	"model":     "model",
	"relay-url": "relay_url",
	"port":      "port",
	"log-level": "log_level",
}

// Load reads configuration from an optional carcustomizer.yaml, the
// environment, and any of the given flags that were set
func Load(flags *pflag.FlagSet) (*Config, error) {
	v, err := newViper(flags)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Provider: strings.ToLower(strings.TrimSpace(v.GetString("provider"))),
		Gemini: ProviderConfig{
			APIKey: v.GetString("gemini_api_key"),
			Model:  v.GetString("gemini_model"),
		},
		OpenAI: ProviderConfig{
			APIKey:  v.GetString("openai_api_key"),
			Model:   v.GetString("openai_model"),
			BaseURL: v.GetString("openai_base_url"),
		},
		RelayURL: v.GetString("relay_url"),
		Server: ServerConfig{
			Port:           v.GetString("port"),
			MaxUploadBytes: v.GetInt64("max_upload_bytes"),
			RequestTimeout: v.GetDuration("request_timeout"),
		},
	}

	// --model overrides whichever provider is selected
	if model := v.GetString("model"); model != "" {
		switch cfg.Provider {
		case ProviderGemini:
			cfg.Gemini.Model = model
		case ProviderOpenAI:
			cfg.OpenAI.Model = model
		}
	}

	if cfg.LogLevel, err = logLevel(v); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadLogLevel resolves only the log level, from the same sources as Load,
// without validating provider settings
func LoadLogLevel(flags *pflag.FlagSet) (slog.Level, error) {
	v, err := newViper(flags)
	if err != nil {
		return slog.LevelInfo, err
	}
	return logLevel(v)
}

func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName("carcustomizer")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	v.SetDefault("provider", ProviderGemini)
	v.SetDefault("gemini_model", "gemini-2.5-flash-image")
	v.SetDefault("openai_model", "gpt-image-1")
	v.SetDefault("port", "8888")
	v.SetDefault("max_upload_bytes", bootstrap.DefaultMaxBytes)
	v.SetDefault("request_timeout", "3m")
	v.SetDefault("log_level", "info")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

func logLevel(v *viper.Viper) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log_level"))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", v.GetString("log_level"), err)
	}
	return level, nil
}

// Validate checks the provider selection and server limits
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI:
	case ProviderRelay:
		if c.RelayURL == "" {
			return fmt.Errorf("RELAY_URL is required when PROVIDER=relay")
		}
	default:
		return fmt.Errorf("unknown provider %q (want gemini, relay or openai)", c.Provider)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// ProviderConfig returns the remote edit settings for the selected provider
func (c *Config) ProviderConfig() providers.Config {
	pc := providers.Config{Provider: c.Provider, Timeout: c.Server.RequestTimeout}
	switch c.Provider {
	case ProviderGemini:
		pc.APIKey, pc.Model = c.Gemini.APIKey, c.Gemini.Model
	case ProviderOpenAI:
		pc.APIKey, pc.Model, pc.BaseURL = c.OpenAI.APIKey, c.OpenAI.Model, c.OpenAI.BaseURL
	case ProviderRelay:
		pc.BaseURL = c.RelayURL
	}
	return pc
}
