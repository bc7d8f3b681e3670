package cli

import (
	"ai-power-rankings/pkg/config"
)

// Config holds the configuration of the rankings CLI.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Ranking  config.Ranking  `mapstructure:"ranking"`
	Gemini   config.Gemini   `mapstructure:"gemini"`
}

// LoadConfig loads the CLI configuration from the given path.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Ranking.ExportDir == "" {
		cfg.Ranking.ExportDir = "data/json"
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "warn"
	}
	return &cfg, nil
}
