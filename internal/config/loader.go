package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. BOT_TRELLO_TOKEN overrides trello.token.
const EnvPrefix = "BOT"

var secretKeys = []string{
	"telegram.token",
	"trello.api_key",
	"trello.token",
	"sheets.credentials_file",
}

// LoadConfig reads configuration from:
//  1. Default values
//  2. the YAML file at path (optional)
//  3. BOT_* environment variables
//
// and validates the result.
func LoadConfig(path string) (*Config, error) {
	startTime := time.Now()

	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		slog.Info("Configuration file not found, using defaults and environment", "path", path)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("Configuration loaded",
		"path", path,
		"board_id", cfg.Trello.BoardID,
		"tasks", len(cfg.Scheduler.Tasks),
		"duration", time.Since(startTime))

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	// Prefix maps are registered per key so that a config file overriding one
	// alias keeps the defaults of the others.
	for alias, prefix := range DefaultListPrefixes {
		v.SetDefault("trello.list_prefixes."+alias, prefix)
	}
	for alias, prefix := range DefaultCustomFieldPrefixes {
		v.SetDefault("trello.custom_field_prefixes."+alias, prefix)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Secrets usually come only from the environment, so viper has to know
	// about them even when the file does not mention them.
	for _, key := range secretKeys {
		_ = v.BindEnv(key)
	}

	return v
}
