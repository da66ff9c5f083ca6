// Package config loads Logly's YAML configuration, deep-merged over
// built-in defaults, grounded on xtop's config.Default/Path/Load shape
// and on logly/config/config_loader.py's recursive dict merge.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the full set of recognized keys from spec.md §6.
type Config struct {
	Database struct {
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"database"`

	Collection struct {
		SystemMetrics  int `yaml:"system_metrics"`
		NetworkMetrics int `yaml:"network_metrics"`
		LogParsing     int `yaml:"log_parsing"`
	} `yaml:"collection"`

	System struct {
		Enabled bool     `yaml:"enabled"`
		Metrics []string `yaml:"metrics"`
	} `yaml:"system"`

	Network struct {
		Enabled bool     `yaml:"enabled"`
		Metrics []string `yaml:"metrics"`
	} `yaml:"network"`

	Logs struct {
		Enabled bool                 `yaml:"enabled"`
		Sources map[string]LogSource `yaml:"sources"`
	} `yaml:"logs"`

	Aggregation struct {
		Enabled         bool  `yaml:"enabled"`
		Intervals       []int `yaml:"intervals"`
		KeepRawDataDays int   `yaml:"keep_raw_data_days"`
	} `yaml:"aggregation"`

	Export struct {
		DefaultFormat   string `yaml:"default_format"`
		TimestampFormat string `yaml:"timestamp_format"`
	} `yaml:"export"`

	Query struct {
		DefaultTimeWindow string         `yaml:"default_time_window"`
		Thresholds        map[string]any `yaml:"thresholds"`
	} `yaml:"query"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LogSource is one entry under logs.sources.<name>.
type LogSource struct {
	Path    string `yaml:"path"`
	Enabled bool   `yaml:"enabled"`
}

// Default returns the built-in configuration every loaded file is
// deep-merged on top of.
func Default() Config {
	var c Config
	c.Database.Path = "."
	c.Database.RetentionDays = 90

	c.Collection.SystemMetrics = 30
	c.Collection.NetworkMetrics = 30
	c.Collection.LogParsing = 10

	c.System.Enabled = true
	c.System.Metrics = []string{"cpu", "memory", "disk", "load"}

	c.Network.Enabled = true
	c.Network.Metrics = []string{"bytes", "packets", "errors", "connections"}

	c.Logs.Enabled = true
	c.Logs.Sources = map[string]LogSource{
		"auth":     {Path: "/var/log/auth.log", Enabled: true},
		"syslog":   {Path: "/var/log/syslog", Enabled: true},
		"fail2ban": {Path: "/var/log/fail2ban.log", Enabled: true},
		"nginx":    {Path: "/var/log/nginx/access.log", Enabled: false},
	}

	c.Aggregation.Enabled = true
	c.Aggregation.Intervals = []int{3600, 86400}
	c.Aggregation.KeepRawDataDays = 30

	c.Export.DefaultFormat = "csv"
	c.Export.TimestampFormat = "2006-01-02 15:04:05"

	c.Query.DefaultTimeWindow = "24h"
	c.Query.Thresholds = map[string]any{}

	c.Logging.Level = "info"
	return c
}

// Load reads path, deep-merges it over Default(), and returns the
// result. A missing path is not an error — Default() alone is
// returned. A malformed file is a misconfiguration, per spec.md §7,
// and fails fast.
func Load(path string) (Config, error) {
	def := Default()
	if path == "" {
		return def, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return def, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	defBytes, err := yaml.Marshal(def)
	if err != nil {
		return Config{}, fmt.Errorf("internal: marshal defaults: %w", err)
	}
	var defMap, overrideMap map[string]any
	if err := yaml.Unmarshal(defBytes, &defMap); err != nil {
		return Config{}, fmt.Errorf("internal: remarshal defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, &overrideMap); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	merged := deepMerge(defMap, overrideMap)

	out, err := yaml.Marshal(merged)
	if err != nil {
		return Config{}, fmt.Errorf("internal: remarshal merged config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(out, &cfg); err != nil {
		return Config{}, fmt.Errorf("internal: decode merged config: %w", err)
	}
	return cfg, nil
}

// deepMerge recursively overlays override onto base: nested maps merge
// key by key, everything else (scalars, slices) is replaced wholesale.
func deepMerge(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		if baseVal, ok := out[k]; ok {
			baseMap, baseIsMap := asStringMap(baseVal)
			overrideMap, overrideIsMap := asStringMap(v)
			if baseIsMap && overrideIsMap {
				out[k] = deepMerge(baseMap, overrideMap)
				continue
			}
		}
		out[k] = v
	}
	return out
}

func asStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// DataDir returns database.path, cleaned, as the data directory for
// store.Open, which creates its hardcoded file name inside it. The
// value names that directory, not the database file itself.
func (c Config) DataDir() string {
	if c.Database.Path == "" {
		return "."
	}
	return filepath.Clean(c.Database.Path)
}
