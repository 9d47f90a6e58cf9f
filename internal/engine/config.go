package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"marketreplay/internal/execution"
)

// Config is the YAML run configuration assembled by the composition root.
type Config struct {
	InitialCapital float64  `yaml:"initial_capital"`
	OrderSize      float64  `yaml:"order_size"`
	Symbols        []string `yaml:"symbols"`
	CSVDir         string   `yaml:"csv_dir"`

	Risk      RiskConfig       `yaml:"risk"`
	Execution execution.Config `yaml:"execution"`
	Strategy  StrategyConfig   `yaml:"strategy"`
}

type RiskConfig struct {
	MaxPositionSize      float64 `yaml:"max_position_size"`
	MaxPortfolioExposure float64 `yaml:"max_portfolio_exposure"`
	MaxConcentration     float64 `yaml:"max_concentration"`
}

type StrategyConfig struct {
	Name   string             `yaml:"name"`
	Params map[string]float64 `yaml:"params"`
}

// LoadConfig reads a YAML run configuration and applies defaults.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		InitialCapital: 100000,
		OrderSize:      100,
		Risk: RiskConfig{
			MaxPositionSize:      1000,
			MaxPortfolioExposure: 100000,
			MaxConcentration:     0.25,
		},
		Execution: execution.Config{
			SlippageModel:   execution.SlippageFixed,
			LatencyModel:    execution.LatencyZero,
			CommissionModel: execution.CommissionPercent,
		},
	}
}
