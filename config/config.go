package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/ocppcs/core/factory"
	"github.com/kilianp07/ocppcs/core/metrics"
	"github.com/kilianp07/ocppcs/infra/persistence"
	"github.com/kilianp07/ocppcs/infra/tracing"
	"github.com/kilianp07/ocppcs/infra/transport"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// levels: OCPP_API__ADDR sets api.addr.
const EnvPrefix = "OCPP_"

type Config struct {
	API       APIConfig            `json:"api"`
	Transport transport.Config     `json:"transport"`
	Database  persistence.Config   `json:"database"`
	Metrics   metrics.Config       `json:"metrics"`
	TaskLog   factory.ModuleConfig `json:"task_log"`
	Sentry    SentryConfig         `json:"sentry"`
	Tracing   tracing.Config       `json:"tracing"`
}

// Load reads a YAML or JSON file and applies environment overrides. An
// empty path loads the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills unset sections.
func (c *Config) SetDefaults() {
	c.API.SetDefaults()
	if c.TaskLog.Type == "" {
		c.TaskLog.Type = "none"
	}
	if len(c.Metrics.Sinks) == 0 {
		c.Metrics.Sinks = []factory.ModuleConfig{{Type: "prometheus"}}
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Sentry.Validate(); err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	if c.Transport.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("transport: request_timeout_seconds must not be negative")
	}
	switch strings.ToLower(c.Database.Driver) {
	case "", "sqlite", "postgres", "postgresql":
	default:
		return fmt.Errorf("database: unknown driver %q", c.Database.Driver)
	}
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		return fmt.Errorf("database: dsn is required for postgres")
	}
	return nil
}
