package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/nemanja-m/skewshuffle/pkg/core"
	"github.com/nemanja-m/skewshuffle/pkg/mapping"
	"github.com/nemanja-m/skewshuffle/pkg/model"
)

// SimulationConfig contains all configuration for a local shuffle simulation.
type SimulationConfig struct {
	Reducers        int           `mapstructure:"reducers"`
	Rounds          int           `mapstructure:"rounds"`
	RecordsPerRound int           `mapstructure:"records_per_round"`
	RecordWidth     int           `mapstructure:"record_width"`
	OpSize          int           `mapstructure:"op_size"`
	Workers         int           `mapstructure:"workers"`
	Seed            uint64        `mapstructure:"seed"`
	ZipfAlpha       float64       `mapstructure:"zipf_alpha"`
	Strategy        string        `mapstructure:"strategy"`
	Layout          LayoutConfig  `mapstructure:"layout"`
	Input           string        `mapstructure:"input"`
	Output          string        `mapstructure:"output"`
	Metrics         MetricsConfig `mapstructure:"metrics"`
	Logging         LoggingConfig `mapstructure:"logging"`
}

// LayoutConfig names the cost estimators of the lower and upper reducer halves.
type LayoutConfig struct {
	Low  string `mapstructure:"low"`
	High string `mapstructure:"high"`
}

// MetricsConfig contains the Prometheus endpoint configuration.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoadSimulation loads the simulation configuration from the given path.
// If configPath is empty, it looks for simulation.yaml in the config/ directory.
// Environment variables with SKEWSHUFFLE_ prefix override config file values.
func LoadSimulation(configPath string) (*SimulationConfig, error) {
	v := viper.New()

	v.SetDefault("reducers", 16)
	v.SetDefault("rounds", 10)
	v.SetDefault("records_per_round", 4096)
	v.SetDefault("record_width", 16)
	v.SetDefault("op_size", model.DefaultOperationSize)
	v.SetDefault("workers", 4)
	v.SetDefault("seed", 42)
	v.SetDefault("zipf_alpha", 1.2)
	v.SetDefault("strategy", string(mapping.KindPartitionBounded))
	v.SetDefault("layout.low", model.BankLevelName)
	v.SetDefault("layout.high", model.GPUName)
	v.SetDefault("input", "")
	v.SetDefault("output", "")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("simulation")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("SKEWSHUFFLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg SimulationConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the simulation cannot run.
func (c *SimulationConfig) Validate() error {
	if c.Reducers <= 0 {
		return fmt.Errorf("%w: reducers must be positive, got %d", core.ErrInvalidArgument, c.Reducers)
	}
	if c.Rounds <= 0 {
		return fmt.Errorf("%w: rounds must be positive, got %d", core.ErrInvalidArgument, c.Rounds)
	}
	if c.RecordsPerRound <= 0 {
		return fmt.Errorf("%w: records_per_round must be positive, got %d", core.ErrInvalidArgument, c.RecordsPerRound)
	}
	if c.RecordWidth <= 0 {
		return fmt.Errorf("%w: record_width must be positive, got %d", core.ErrInvalidArgument, c.RecordWidth)
	}
	if c.OpSize <= 0 {
		return fmt.Errorf("%w: op_size must be positive, got %d", core.ErrInvalidArgument, c.OpSize)
	}
	if c.ZipfAlpha < 0 {
		return fmt.Errorf("%w: zipf_alpha must not be negative, got %v", core.ErrInvalidArgument, c.ZipfAlpha)
	}
	if _, err := mapping.ParseKind(c.Strategy); err != nil {
		return err
	}
	if _, err := c.Layout.Build(); err != nil {
		return err
	}
	return nil
}

// Build resolves the configured estimator names into a split layout.
func (l LayoutConfig) Build() (model.SplitLayout, error) {
	low, err := model.EstimatorByName(l.Low)
	if err != nil {
		return model.SplitLayout{}, fmt.Errorf("layout.low: %w", err)
	}
	high, err := model.EstimatorByName(l.High)
	if err != nil {
		return model.SplitLayout{}, fmt.Errorf("layout.high: %w", err)
	}
	return model.NewSplitLayout(low, high)
}
