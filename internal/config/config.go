// Package config loads the TOML configuration shared by the command-line tools.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Stress   StressConfig   `toml:"stress"`
	Snapshot SnapshotConfig `toml:"snapshot"`
	Report   ReportConfig   `toml:"report"`
	Logging  LoggingConfig  `toml:"logging"`
}

type StressConfig struct {
	Duration       time.Duration `toml:"duration"`
	Entities       int           `toml:"entities"`
	ChurnPerFrame  int           `toml:"churn_per_frame"` // random structural commands queued each frame
	MaxComponents  int           `toml:"max_components"`  // per freshly created entity
	Seed           int64         `toml:"seed"`            // 0 picks a time-based seed
	GCPauseMetrics bool          `toml:"gc_pause_metrics"`
	Profile        string        `toml:"profile"` // "", "cpu" or "mem"
	ProfilePath    string        `toml:"profile_path"`
}

type SnapshotConfig struct {
	Every int    `toml:"every"` // frames between save/load round-trips, 0 disables
	Path  string `toml:"path"`  // when set, the latest snapshot is also written here
	Watch bool   `toml:"watch"` // reload the snapshot file whenever it changes on disk
}

type ReportConfig struct {
	Format string `toml:"format"` // "text" or "yaml"
	Output string `toml:"output"` // file path, empty for stdout
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Stress: StressConfig{
			Duration:      10 * time.Second,
			Entities:      10000,
			ChurnPerFrame: 64,
			MaxComponents: 5,
			ProfilePath:   ".",
		},
		Snapshot: SnapshotConfig{
			Every: 120,
		},
		Report: ReportConfig{
			Format: "text",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate rejects values the tools cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Stress.Duration <= 0:
		return fmt.Errorf("stress.duration must be positive, got %s", c.Stress.Duration)
	case c.Stress.Entities < 0 || c.Stress.Entities > 1<<16:
		return fmt.Errorf("stress.entities must be between 0 and %d, got %d", 1<<16, c.Stress.Entities)
	case c.Stress.MaxComponents < 1:
		return fmt.Errorf("stress.max_components must be at least 1, got %d", c.Stress.MaxComponents)
	case c.Stress.ChurnPerFrame < 0:
		return fmt.Errorf("stress.churn_per_frame must not be negative")
	case c.Snapshot.Every < 0:
		return fmt.Errorf("snapshot.every must not be negative")
	case c.Snapshot.Watch && c.Snapshot.Path == "":
		return fmt.Errorf("snapshot.watch requires snapshot.path")
	}

	switch c.Stress.Profile {
	case "", "cpu", "mem":
	default:
		return fmt.Errorf("stress.profile must be cpu or mem, got %q", c.Stress.Profile)
	}
	switch c.Report.Format {
	case "text", "yaml":
	default:
		return fmt.Errorf("report.format must be text or yaml, got %q", c.Report.Format)
	}
	return nil
}
