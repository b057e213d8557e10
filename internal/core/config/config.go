package config

import (
	"time"

	redisclient "github.com/quangvu/fetchd/internal/infra/redis"
	"github.com/quangvu/fetchd/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Fetch    FetchConfig        `yaml:"fetch"`
	Gate     GateConfig         `yaml:"gate"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// FetchConfig holds settings for the media fetch pipeline.
type FetchConfig struct {
	ToolPath         string        `yaml:"tool_path"`          // fetch tool binary, resolved via PATH if bare
	WorkDir          string        `yaml:"work_dir"`           // parent of per-job working directories
	ShortFormTimeout time.Duration `yaml:"short_form_timeout"` // per-attempt deadline, short-form providers
	LongFormTimeout  time.Duration `yaml:"long_form_timeout"`  // per-attempt deadline, long-form providers
	MetadataTimeout  time.Duration `yaml:"metadata_timeout"`   // deadline for metadata-only probes
	MaxFileSizeMB    int           `yaml:"max_file_size_mb"`   // 0 = unlimited
	Regions          []string      `yaml:"regions"`            // geo-bypass country codes, in escalation order
	CookiesB64       string        `yaml:"cookies_b64"`        // base64-encoded cookie jar, optional
}

// GateConfig holds per-user concurrency limits by operation class.
type GateConfig struct {
	MaxFetch     int `yaml:"max_fetch"`
	MaxTranslate int `yaml:"max_translate"`
}
