package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// AnalysisConfig drives the offline flame-graph reports
type AnalysisConfig struct {
	TopFunctions   int `toml:"TopFunctions"`
	TopPerCategory int `toml:"TopPerCategory"`
	DisplayWidth   int `toml:"DisplayWidth"`
}

// MonitorConfig drives the live sampling loop
type MonitorConfig struct {
	SampleIntervalInSeconds uint32   `toml:"SampleIntervalInSeconds"`
	PollTimeoutInSeconds    uint32   `toml:"PollTimeoutInSeconds"`
	StatsCommand            string   `toml:"StatsCommand"`
	StatsArgs               []string `toml:"StatsArgs"`
}

// CompareConfig drives the benchmark run comparison
type CompareConfig struct {
	BenchmarksDir string   `toml:"BenchmarksDir"`
	Workloads     []string `toml:"Workloads"`
}

// RunsConfig locates dated profiling run directories
type RunsConfig struct {
	ProfilesDir string `toml:"ProfilesDir"`
	RunPrefix   string `toml:"RunPrefix"`
}

// Config maps to the config.toml file for the profiling toolkit
type Config struct {
	Analysis AnalysisConfig `toml:"Analysis"`
	Monitor  MonitorConfig  `toml:"Monitor"`
	Compare  CompareConfig  `toml:"Compare"`
	Runs     RunsConfig     `toml:"Runs"`
}

// DefaultConfig returns the configuration used when no config file is provided
func DefaultConfig() Config {
	return Config{
		Analysis: AnalysisConfig{
			TopFunctions:   20,
			TopPerCategory: 3,
			DisplayWidth:   70,
		},
		Monitor: MonitorConfig{
			SampleIntervalInSeconds: 1,
			PollTimeoutInSeconds:    5,
			StatsCommand:            "oxcrypt",
			StatsArgs:               []string{"stats"},
		},
		Compare: CompareConfig{
			BenchmarksDir: "benchmarks",
			Workloads:     []string{"concurrent", "media", "backup"},
		},
		Runs: RunsConfig{
			ProfilesDir: "profiles",
			RunPrefix:   "concurrent_",
		},
	}
}

// LoadConfig parses a TOML file into the Config struct
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filepath, err)
	}

	cfg := DefaultConfig()
	err = toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &cfg, nil
}
