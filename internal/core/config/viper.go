package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper. CLI flags,
// then environment, then config file, then defaults -- callers apply
// flag overrides on top of the returned Config.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("cache_dir", "./.ooroo-cache")
	v.SetDefault("output_format", "text")

	v.SetEnvPrefix("OOROO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		CacheDir:     v.GetString("cache_dir"),
		OutputFormat: v.GetString("output_format"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
