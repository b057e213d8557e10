package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Fetch.ToolPath == "" {
		cfg.Fetch.ToolPath = "yt-dlp"
	}
	if cfg.Fetch.WorkDir == "" {
		cfg.Fetch.WorkDir = os.TempDir()
	}
	if cfg.Fetch.ShortFormTimeout == 0 {
		cfg.Fetch.ShortFormTimeout = 300 * time.Second
	}
	if cfg.Fetch.LongFormTimeout == 0 {
		cfg.Fetch.LongFormTimeout = 900 * time.Second
	}
	if cfg.Fetch.MetadataTimeout == 0 {
		cfg.Fetch.MetadataTimeout = 60 * time.Second
	}
	if cfg.Gate.MaxFetch == 0 {
		cfg.Gate.MaxFetch = 3
	}
	if cfg.Gate.MaxTranslate == 0 {
		cfg.Gate.MaxTranslate = 2
	}

	return &cfg, nil
}
