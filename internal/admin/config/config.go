package config

import (
	"ai-power-rankings/pkg/config"
)

// Admin holds admin API specific configuration.
type Admin struct {
	APIKey          string `mapstructure:"api_key"`
	CurrentCacheTTL string `mapstructure:"current_cache_ttl"`
}

// Scheduler holds configuration for the cron scheduler loop.
type Scheduler struct {
	Enabled         bool   `mapstructure:"enabled"`
	PollingInterval string `mapstructure:"polling_interval"`
}

// Config holds the full configuration for the admin service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	Admin     Admin           `mapstructure:"admin"`
	Ranking   config.Ranking  `mapstructure:"ranking"`
	Jina      config.Jina     `mapstructure:"jina"`
	Gemini    config.Gemini   `mapstructure:"gemini"`
	Scheduler Scheduler       `mapstructure:"scheduler"`
}

// Load loads the admin configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Ranking.ExportDir == "" {
		cfg.Ranking.ExportDir = "data/json"
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = 8080
	}
	return &cfg, nil
}
