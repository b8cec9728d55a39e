// Package config loads server configuration from file and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Log      LogConfig
	Reports  ReportsConfig
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenDuration time.Duration `mapstructure:"token_duration"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// ReportsConfig holds defaults for report endpoints when the request does not
// specify a range.
type ReportsConfig struct {
	ForecastMonths int `mapstructure:"forecast_months"`
	ExpiringDays   int `mapstructure:"expiring_days"`
	ScheduleMonths int `mapstructure:"schedule_months"`
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from file and env. Env var overrides use prefix
// SUBSCRIPTIO_, e.g. SUBSCRIPTIO_AUTH_JWT_SECRET.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "subscriptio", "subscriptio.db"))
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_duration", 24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("reports.forecast_months", 12)
	v.SetDefault("reports.expiring_days", 7)
	v.SetDefault("reports.schedule_months", 12)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("SUBSCRIPTIO_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "subscriptio"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SUBSCRIPTIO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// config file is optional
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if c.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("auth.jwt_secret is required (set SUBSCRIPTIO_AUTH_JWT_SECRET)")
	}
	return c, nil
}
