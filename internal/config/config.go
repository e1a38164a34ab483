// Package config loads slate settings from file and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	User     UserConfig
	Canvas   CanvasConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// UserConfig identifies this client in presence records.
type UserConfig struct {
	ID    string
	Name  string
	Color string
}

// CanvasConfig holds the default canvas and its logical size.
type CanvasConfig struct {
	ID     string
	Width  float64
	Height float64
}

// Load reads configuration from file and env. Env var overrides use
// prefix SLATE_, with dots replaced by underscores (SLATE_DATABASE_PATH).
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "slate", "slate.db"))
	v.SetDefault("user.id", defaultUserID())
	v.SetDefault("user.name", defaultUserID())
	v.SetDefault("user.color", "#4f8ef7")
	v.SetDefault("canvas.id", "default")
	v.SetDefault("canvas.width", 1920.0)
	v.SetDefault("canvas.height", 1080.0)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("SLATE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "slate"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SLATE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

func defaultUserID() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "anonymous"
}
