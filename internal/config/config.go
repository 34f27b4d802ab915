// Package config loads the hosts file mapping aliases to ESXi connection settings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPort is used when a host entry does not set one.
const DefaultPort = 22

// HostConfig holds the connection settings for one ESXi host.
type HostConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Config is the parsed hosts file.
type Config struct {
	Hosts map[string]HostConfig `yaml:"hosts"`
}

// ParseFile parses a hosts file from a YAML file.
func ParseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hosts file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hosts file %s: %w", path, err)
	}

	return cfg, nil
}

// Parse parses a hosts file from YAML data and validates each entry.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid hosts file format: %w", err)
	}

	for alias, hc := range cfg.Hosts {
		if hc.Host == "" {
			return nil, fmt.Errorf("host entry %q: 'host' is required", alias)
		}
		if hc.User == "" {
			return nil, fmt.Errorf("host entry %q: 'user' is required", alias)
		}
		if hc.Port == 0 {
			hc.Port = DefaultPort
			cfg.Hosts[alias] = hc
		}
	}

	return &cfg, nil
}

// Lookup returns the settings for the given alias.
func (c *Config) Lookup(alias string) (HostConfig, error) {
	hc, ok := c.Hosts[alias]
	if !ok {
		return HostConfig{}, fmt.Errorf("host %q not found in hosts file", alias)
	}
	return hc, nil
}
