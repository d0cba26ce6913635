// Package config provides configuration management for netcompiler.
//
// The config file holds the remote API endpoint and credentials together
// with local settings for the store, logging and metrics. Secrets may be
// supplied through the environment instead of the file.
//
// Config file locations (priority order):
//  1. --config flag
//  2. $NETCOMPILER_CONFIG
//  3. ./netcompiler.yaml
//  4. $XDG_CONFIG_HOME/netcompiler/config.yaml
//  5. ~/.config/netcompiler/config.yaml
//  6. /etc/netcompiler/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"netcompiler/internal/logger"
)

// Environment variables that override file values
const (
	EnvDomain       = "NETCOMPILER_DOMAIN"
	EnvUsername     = "NETCOMPILER_USERNAME"
	EnvPassword     = "NETCOMPILER_PASSWORD"
	EnvClientID     = "NETCOMPILER_CLIENT_ID"
	EnvClientSecret = "NETCOMPILER_CLIENT_SECRET"
	EnvTenancy      = "NETCOMPILER_TENANCY"
)

// Load finds and loads the config file, or returns defaults if none found.
// Environment overrides are applied in both cases.
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		cfg := DefaultConfig()
		cfg.applyEnv()
		return cfg, "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	return cfg, path, nil
}

// DefaultConfig returns defaults for everything except the API endpoint
// and credentials
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		API: APIConfig{
			Scheme:    "https",
			VerifySSL: true,
		},
		Database: DatabaseConfig{Path: ":memory:"},
		Logging:  logger.DefaultConfig(),
		Provisioning: ProvisioningConfig{
			EnvironmentPrefix: "PCAP_SDI",
			NICModel:          "e1000",
		},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.Version == 0 {
		c.Version = def.Version
	}
	if c.API.Scheme == "" {
		c.API.Scheme = def.API.Scheme
	}
	c.API.Domain = strings.TrimSuffix(strings.TrimSpace(c.API.Domain), "/")
	if c.Database.Path == "" {
		c.Database.Path = def.Database.Path
	}
	if c.Logging.Output == "" {
		c.Logging.Output = def.Logging.Output
	}
	if c.Provisioning.EnvironmentPrefix == "" {
		c.Provisioning.EnvironmentPrefix = def.Provisioning.EnvironmentPrefix
	}
	if c.Provisioning.NICModel == "" {
		c.Provisioning.NICModel = def.Provisioning.NICModel
	}
}

// applyEnv overrides file values with any set environment variables
func (c *Config) applyEnv() {
	overrides := map[string]*string{
		EnvDomain:       &c.API.Domain,
		EnvUsername:     &c.Credentials.Username,
		EnvPassword:     &c.Credentials.Password,
		EnvClientID:     &c.Credentials.ClientID,
		EnvClientSecret: &c.Credentials.ClientSecret,
		EnvTenancy:      &c.Credentials.Tenancy,
	}
	for env, field := range overrides {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*field = v
		}
	}
}

// Validate reports every setting required to reach the provisioning API
// that is missing
func (c *Config) Validate() error {
	var errs []error

	if c.API.Domain == "" {
		errs = append(errs, errors.New("api.domain is required"))
	}
	if c.Credentials.Username == "" {
		errs = append(errs, errors.New("credentials.username is required"))
	}
	if c.Credentials.Password == "" {
		errs = append(errs, errors.New("credentials.password is required"))
	}
	if c.Credentials.ClientID == "" {
		errs = append(errs, errors.New("credentials.client_id is required"))
	}
	if c.Credentials.ClientSecret == "" {
		errs = append(errs, errors.New("credentials.client_secret is required"))
	}
	if c.API.Scheme != "https" && c.API.Scheme != "http" {
		errs = append(errs, fmt.Errorf("api.scheme must be http or https, got %q", c.API.Scheme))
	}

	return errors.Join(errs...)
}

// Summary returns a human-readable config summary without secrets
func (c *Config) Summary() string {
	return fmt.Sprintf("API: %s://%s (verify_ssl=%t), user: %s, store: %s",
		c.API.Scheme, c.API.Domain, c.API.VerifySSL, c.Credentials.Username, c.Database.Path)
}
