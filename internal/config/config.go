// Package config loads the daemon configuration from file, environment
// and defaults, in that order of precedence (environment highest).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full daemon configuration.
type Config struct {
	Daemon DaemonConfig `mapstructure:"daemon"`
	Ring   RingConfig   `mapstructure:"ring"`
}

// DaemonConfig covers the process-level paths and bootstrap settings.
type DaemonConfig struct {
	// SocketPath is the unix socket the RPC server listens on.
	SocketPath string `mapstructure:"socket_path"`

	// DatabasePath is the sqlite database file.
	DatabasePath string `mapstructure:"database_path"`

	// DefaultGroup is created on first start when no group exists yet.
	DefaultGroup string `mapstructure:"default_group"`
}

// RingConfig covers ringing behavior.
type RingConfig struct {
	// SnoozeAfter is how long after a snooze the alarm fires again.
	SnoozeAfter time.Duration `mapstructure:"snooze_after"`

	// MaxRing bounds sound and vibration of an unresolved alarm.
	MaxRing time.Duration `mapstructure:"max_ring"`

	// AlarmSound is played when the alarm has no sound of its own.
	AlarmSound string `mapstructure:"alarm_sound"`

	// NotificationSound is the last resort of the sound fallback chain.
	NotificationSound string `mapstructure:"notification_sound"`
}

// Dir returns the default state directory, ~/.alarmd.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".alarmd"
	}
	return filepath.Join(home, ".alarmd")
}

// Load reads the configuration. When path is empty it looks for
// config.yaml in ~/.alarmd and the working directory; a missing file is
// not an error, defaults and ALARMD_* environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	dir := Dir()
	v.SetDefault("daemon.socket_path", filepath.Join(dir, "alarmd.sock"))
	v.SetDefault("daemon.database_path", filepath.Join(dir, "alarms.db"))
	v.SetDefault("daemon.default_group", "General")

	v.SetDefault("ring.snooze_after", "5m")
	v.SetDefault("ring.max_ring", "10m")
	v.SetDefault("ring.alarm_sound", "")
	v.SetDefault("ring.notification_sound", "")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ALARMD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Daemon.SocketPath == "" {
		return fmt.Errorf("config: daemon.socket_path must not be empty")
	}
	if c.Daemon.DatabasePath == "" {
		return fmt.Errorf("config: daemon.database_path must not be empty")
	}
	if c.Ring.SnoozeAfter <= 0 {
		return fmt.Errorf("config: ring.snooze_after must be positive")
	}
	if c.Ring.MaxRing <= 0 {
		return fmt.Errorf("config: ring.max_ring must be positive")
	}
	return nil
}
