package config

import (
	"time"

	"netcompiler/internal/logger"
)

// Config is the root configuration structure
type Config struct {
	Version      int                `yaml:"version"`
	API          APIConfig          `yaml:"api"`
	Credentials  Credentials        `yaml:"credentials"`
	Database     DatabaseConfig     `yaml:"database"`
	Logging      logger.Config      `yaml:"logging"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Provisioning ProvisioningConfig `yaml:"provisioning"`
}

// APIConfig locates the provisioning API
type APIConfig struct {
	Domain    string    `yaml:"domain"`
	Scheme    string    `yaml:"scheme"`
	Version   string    `yaml:"version,omitempty"` // sent in the Accept header when set
	VerifySSL bool      `yaml:"verify_ssl"`
	Timeout   *Duration `yaml:"timeout,omitempty"` // nil = transport default
}

// Credentials authenticate against the token endpoint
type Credentials struct {
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Tenancy      string `yaml:"tenancy"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig holds metrics export settings
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// ProvisioningConfig tunes what the orchestrator creates
type ProvisioningConfig struct {
	EnvironmentPrefix string `yaml:"environment_prefix"`
	NICModel          string `yaml:"nic_model"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
