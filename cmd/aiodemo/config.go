package main

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// demoConfig is the TOML scenario file. Counts are decoded as int64 and
// narrowed with safecast so that an absurd value fails loudly instead of
// wrapping.
type demoConfig struct {
	Pipeline pipelineConfig `toml:"pipeline"`
	Timers   timersConfig   `toml:"timers"`
	Offload  offloadConfig  `toml:"offload"`
}

type pipelineConfig struct {
	Producers int64 `toml:"producers"`
	Items     int64 `toml:"items"`
	QueueSize int64 `toml:"queue_size"`
}

type timersConfig struct {
	Count      int64 `toml:"count"`
	MaxDelayMS int64 `toml:"max_delay_ms"`
}

type offloadConfig struct {
	Workers int64 `toml:"workers"`
	Calls   int64 `toml:"calls"`
}

func defaultConfig() demoConfig {
	return demoConfig{
		Pipeline: pipelineConfig{Producers: 3, Items: 5, QueueSize: 3},
		Timers:   timersConfig{Count: 8, MaxDelayMS: 200},
		Offload:  offloadConfig{Workers: 4, Calls: 10},
	}
}

// loadConfig returns the defaults, overlaid with the --config file if one
// was given.
func loadConfig(cmd *cobra.Command) (demoConfig, error) {
	cfg := defaultConfig()
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return cfg, fmt.Errorf("failed to read --config: %w", err)
	}
	if path == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("unknown keys in %s: %v", path, undecoded)
	}
	return cfg, nil
}

// count narrows a configured int64 to int, rejecting values that don't fit
// or make no sense for a count.
func count(name string, v int64) (int, error) {
	n, err := safecast.Conv[int](v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("%s must be at least 1, got %d", name, n)
	}
	return n, nil
}
