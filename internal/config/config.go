// Package config handles ucmigrate.yaml parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the tool configuration, usually loaded from ucmigrate.yaml.
type Config struct {
	Databricks DatabricksConfig `yaml:"databricks"`
	AWS        AWSConfig        `yaml:"aws,omitempty"`
	Store      StoreConfig      `yaml:"store,omitempty"`
}

// DatabricksConfig selects the workspace and how to authenticate to it.
// Token may be a literal PAT or a secret reference (aws-sm://, env://).
// With no token the SDK auth chain applies, so Profile alone is enough
// for most setups.
type DatabricksConfig struct {
	Host    string `yaml:"host,omitempty"`
	Profile string `yaml:"profile,omitempty"`
	Token   string `yaml:"token,omitempty"`
}

// AWSConfig selects the account to scan for UC-compatible IAM roles.
type AWSConfig struct {
	Profile string `yaml:"profile,omitempty"`
	Region  string `yaml:"region,omitempty"`
}

// StoreConfig locates the local state database.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"`
}

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "ucmigrate.yaml"

// Load reads and validates a config file. An empty path loads
// ucmigrate.yaml from the working directory; a missing default file yields
// a zero config so the SDK auth chains can take over.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate rejects combinations the SDKs would only fail on later.
func (c *Config) Validate() error {
	if c.Databricks.Token != "" && c.Databricks.Host == "" && c.Databricks.Profile == "" {
		return fmt.Errorf("databricks.token requires databricks.host")
	}
	return nil
}

// StorePath returns the configured state database path, defaulting to
// ~/.ucmigrate/state.db.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".ucmigrate", "state.db")
	}
	return filepath.Join(homeDir, ".ucmigrate", "state.db")
}
