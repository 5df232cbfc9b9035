// Package config loads the paneledit configuration file: logging, the
// configured data sources and template variables.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Editor modes of a configured data source.
const (
	EditorNative = "native"
	EditorLegacy = "legacy"
	EditorNone   = "none"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// Config is the configuration file.
type Config struct {
	Name              string             `yaml:"name" toml:"name"`
	Version           string             `yaml:"version,omitempty" toml:"version,omitempty"`
	Log               LogConfig          `yaml:"log" toml:"log"`
	DefaultDataSource string             `yaml:"default_datasource,omitempty" toml:"default_datasource,omitempty"`
	DataSources       []DataSourceConfig `yaml:"datasources" toml:"datasources"`
	Variables         map[string]string  `yaml:"variables,omitempty" toml:"variables,omitempty"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// DataSourceConfig describes one data source.
type DataSourceConfig struct {
	UID            string                 `yaml:"uid" toml:"uid"`
	Type           string                 `yaml:"type" toml:"type"`
	Name           string                 `yaml:"name,omitempty" toml:"name,omitempty"`
	Mixed          bool                   `yaml:"mixed,omitempty" toml:"mixed,omitempty"`
	Editor         string                 `yaml:"editor,omitempty" toml:"editor,omitempty"`
	DefaultQuery   map[string]interface{} `yaml:"default_query,omitempty" toml:"default_query,omitempty"`
	ImportableFrom []string               `yaml:"importable_from,omitempty" toml:"importable_from,omitempty"`
}

// DisplayName returns Name, or UID when unnamed.
func (d DataSourceConfig) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.UID
}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		return nil, fmt.Errorf("decode default config: %w", err)
	}
	return &cfg, nil
}

// Load reads path over the defaults. An empty path yields the defaults.
// Files ending in .toml are read as TOML, anything else as YAML.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var user Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &user)
	} else {
		err = yaml.Unmarshal(data, &user)
	}
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg.merge(user)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// merge overlays the set fields of user. A user data source list replaces
// the default one.
func (c *Config) merge(user Config) {
	if user.Name != "" {
		c.Name = user.Name
	}
	if user.Version != "" {
		c.Version = user.Version
	}
	if user.Log.Level != "" {
		c.Log.Level = user.Log.Level
	}
	if user.DefaultDataSource != "" {
		c.DefaultDataSource = user.DefaultDataSource
	}
	if len(user.DataSources) > 0 {
		c.DataSources = user.DataSources
	}
	if len(user.Variables) > 0 {
		if c.Variables == nil {
			c.Variables = map[string]string{}
		}
		for k, v := range user.Variables {
			c.Variables[k] = v
		}
	}
}

// Validate checks data source identities, editor modes and the default.
func (c *Config) Validate() error {
	var errs []error
	seen := map[string]struct{}{}
	for i, ds := range c.DataSources {
		if ds.UID == "" {
			errs = append(errs, fmt.Errorf("datasources[%d]: uid is required", i))
		}
		if ds.Type == "" {
			errs = append(errs, fmt.Errorf("datasources[%d]: type is required", i))
		}
		if _, dup := seen[ds.UID]; dup && ds.UID != "" {
			errs = append(errs, fmt.Errorf("datasources[%d]: duplicate uid %q", i, ds.UID))
		}
		seen[ds.UID] = struct{}{}
		switch ds.Editor {
		case "", EditorNative, EditorLegacy, EditorNone:
		default:
			errs = append(errs, fmt.Errorf("datasources[%d]: unknown editor %q", i, ds.Editor))
		}
	}
	if c.DefaultDataSource != "" {
		if _, ok := seen[c.DefaultDataSource]; !ok {
			errs = append(errs, fmt.Errorf("default_datasource %q is not configured", c.DefaultDataSource))
		}
	}
	return errors.Join(errs...)
}
