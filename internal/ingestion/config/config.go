package config

import (
	"time"

	"ai-power-rankings/pkg/config"
)

// Ingestion holds worker specific configuration.
type Ingestion struct {
	MaxConcurrentTasks   int           `mapstructure:"max_concurrent_tasks"`
	TaskExecutionTimeout time.Duration `mapstructure:"task_execution_timeout"`
	ReadBlock            time.Duration `mapstructure:"read_block"`
	FetchTimeout         time.Duration `mapstructure:"fetch_timeout"`
	NotifyTopN           int           `mapstructure:"notify_top_n"`
}

// Config holds the full configuration for the ingestion service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	Ingestion Ingestion       `mapstructure:"ingestion"`
	Ranking   config.Ranking  `mapstructure:"ranking"`
	Jina      config.Jina     `mapstructure:"jina"`
	Gemini    config.Gemini   `mapstructure:"gemini"`
	Telegram  config.Telegram `mapstructure:"telegram"`
}

// Load loads the ingestion configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Ingestion.MaxConcurrentTasks <= 0 {
		cfg.Ingestion.MaxConcurrentTasks = 1
	}
	if cfg.Ingestion.TaskExecutionTimeout <= 0 {
		cfg.Ingestion.TaskExecutionTimeout = 30 * time.Minute
	}
	if cfg.Ingestion.ReadBlock <= 0 {
		cfg.Ingestion.ReadBlock = 2 * time.Second
	}
	if cfg.Ingestion.FetchTimeout <= 0 {
		cfg.Ingestion.FetchTimeout = 20 * time.Second
	}
	if cfg.Ingestion.NotifyTopN <= 0 {
		cfg.Ingestion.NotifyTopN = 15
	}
	return &cfg, nil
}
