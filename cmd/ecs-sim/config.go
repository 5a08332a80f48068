package main

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Sim     SimConfig     `toml:"sim"`
	Logging LoggingConfig `toml:"logging"`
}

type SimConfig struct {
	Entities     int           `toml:"entities"`
	TickInterval time.Duration `toml:"tick_interval"`
	Duration     time.Duration `toml:"duration"`
	WorldWidth   float64       `toml:"world_width"`
	WorldHeight  float64       `toml:"world_height"`
	Profile      bool          `toml:"profile"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func DefaultConfig() Config {
	return Config{
		Sim: SimConfig{
			Entities:     10000,
			TickInterval: 16 * time.Millisecond,
			Duration:     10 * time.Second,
			WorldWidth:   1000,
			WorldHeight:  1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig reads a TOML config file over the defaults. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}
