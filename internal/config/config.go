// Package config resolves potrans settings from defaults, an optional config
// file, a .env file, the environment and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/valpere/potrans/internal/translator"
)

const (
	ProviderMoonshot = "moonshot"
	ProviderGoogle   = "google"

	DefaultBudget = 1000
	DefaultDBPath = "potrans.db"
)

// ErrMissingCredential means the selected provider has no credential configured.
var ErrMissingCredential = errors.New("missing credential")

type Config struct {
	Provider  string `mapstructure:"provider"`
	Budget    int    `mapstructure:"budget"`
	MarkFuzzy bool   `mapstructure:"mark_fuzzy"`
	DBPath    string `mapstructure:"db"`
	NoMemory  bool   `mapstructure:"no_memory"`

	Moonshot translator.ServiceConfig `mapstructure:"moonshot"`
	Google   translator.ServiceConfig `mapstructure:"google"`
}

// SetDefaults registers every known key so that environment variables and
// bound flags are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderMoonshot)
	v.SetDefault("budget", DefaultBudget)
	v.SetDefault("mark_fuzzy", false)
	v.SetDefault("db", DefaultDBPath)
	v.SetDefault("no_memory", false)

	v.SetDefault("moonshot.api_key", "")
	v.SetDefault("moonshot.model", translator.DefaultMoonshotModel)
	v.SetDefault("moonshot.base_url", translator.DefaultMoonshotEndpoint)
	v.SetDefault("moonshot.temperature", translator.DefaultMoonshotTemperature)
	v.SetDefault("moonshot.timeout", "0s")

	v.SetDefault("google.credentials", "")
	v.SetDefault("google.base_url", "")
}

// Load reads the configuration into v and validates it.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	cfg, err := Read(v, configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read resolves the configuration without validating it. configFile may be
// empty, in which case potrans.{yaml,toml,json} is looked up in the working
// directory and in $HOME/.config/potrans; a missing file is not an error.
func Read(v *viper.Viper, configFile string) (*Config, error) {
	// .env is optional; real environment variables take precedence over it.
	_ = godotenv.Load()

	SetDefaults(v)

	v.SetEnvPrefix("POTRANS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("moonshot.api_key", "POTRANS_MOONSHOT_API_KEY", "MOONSHOT_API_KEY"); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("potrans")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "potrans"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings once, before any catalog is touched.
func (c *Config) Validate() error {
	if c.Budget <= 0 {
		return fmt.Errorf("config: budget must be positive, got %d", c.Budget)
	}
	if c.Moonshot.Temperature < 0 {
		return fmt.Errorf("config: temperature must not be negative, got %v", c.Moonshot.Temperature)
	}
	if c.Moonshot.Timeout < 0 {
		return fmt.Errorf("config: timeout must not be negative, got %v", c.Moonshot.Timeout)
	}

	switch c.Provider {
	case ProviderMoonshot:
		if strings.TrimSpace(c.Moonshot.APIKey) == "" {
			return fmt.Errorf("config: %w: set MOONSHOT_API_KEY or moonshot.api_key", ErrMissingCredential)
		}
	case ProviderGoogle:
		// Google falls back to application default credentials.
	default:
		return fmt.Errorf("config: unknown provider %q (want %s or %s)", c.Provider, ProviderMoonshot, ProviderGoogle)
	}

	if !c.NoMemory && strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("config: db path must not be empty unless memory is disabled")
	}
	return nil
}
