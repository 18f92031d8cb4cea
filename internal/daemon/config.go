// Package daemon manages the tomato daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/tomato-clock/tomato/internal/domain"
)

// Config holds all daemon configuration.
type Config struct {
	Timer     TimerConfig     `toml:"timer"`
	API       APIConfig       `toml:"api"`
	Storage   StorageConfig   `toml:"storage"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Logging   LoggingConfig   `toml:"logging"`
}

// TimerConfig sets the session lengths, in minutes.
type TimerConfig struct {
	TomatoMinutes     int `toml:"tomato_minutes"`
	ShortBreakMinutes int `toml:"short_break_minutes"`
	LongBreakMinutes  int `toml:"long_break_minutes"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StorageConfig controls the key-value store.
type StorageConfig struct {
	Dir            string `toml:"dir"`
	SyncQuotaBytes int64  `toml:"sync_quota_bytes"`
}

// TelemetryConfig controls metrics exposure.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls where daemon logs go. When File is set, log
// output is mirrored there in addition to stderr.
type LoggingConfig struct {
	File string `toml:"file"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := tomatoHome()
	return Config{
		Timer: TimerConfig{
			TomatoMinutes:     25,
			ShortBreakMinutes: 5,
			LongBreakMinutes:  15,
		},
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        7311,
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Dir:            homeDir,
			SyncQuotaBytes: 100 * 1024,
		},
		Telemetry: TelemetryConfig{
			Prometheus: false,
		},
		Logging: LoggingConfig{
			File: filepath.Join(homeDir, "tomato.log"),
		},
	}
}

// LoadConfig reads config from ~/.tomato/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(tomatoHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet, use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the config to ~/.tomato/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(tomatoHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// SessionMinutes returns the configured length for a session type.
func (c TimerConfig) SessionMinutes(sessionType domain.SessionType) int {
	switch sessionType {
	case domain.SessionShortBreak:
		return c.ShortBreakMinutes
	case domain.SessionLongBreak:
		return c.LongBreakMinutes
	default:
		return c.TomatoMinutes
	}
}

// tomatoHome returns the tomato data directory.
func tomatoHome() string {
	if env := os.Getenv("TOMATO_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".tomato")
}

// TomatoHome is exported for use by other packages.
func TomatoHome() string {
	return tomatoHome()
}
