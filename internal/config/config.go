// Package config provides gateway configuration loaded from environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const logPrefix = "config:LoadConfig"

// Config holds action-gateway configuration.
type Config struct {
	// COMMS: connect to standalone NATS at COMMSURL.
	COMMSURL  string `envconfig:"COMMS_URL" default:"nats://127.0.0.1:4222"`
	COMMSName string `envconfig:"SERVICE_NAME" default:"action-gateway"`

	// Policy
	Passkey     string `envconfig:"GATEWAY_PASSKEY"`
	VersionNow  string `envconfig:"GATEWAY_VERSION_NOW"`
	VersionMin  string `envconfig:"GATEWAY_VERSION_MIN"`
	ForceUpdate bool   `envconfig:"GATEWAY_FORCE_UPDATE" default:"false"`

	// Bootstrap (deny rules, message catalogs)
	BootstrapFile string `envconfig:"GATEWAY_BOOTSTRAP_FILE"`

	// Timeouts
	RequestTimeout time.Duration `envconfig:"GATEWAY_REQUEST_TIMEOUT" default:"25s"`

	// HTTP surface (health, metrics, manifest, status page)
	HTTPPort           int           `envconfig:"HTTP_PORT" default:"8080"`
	HealthCheckTimeout time.Duration `envconfig:"HEALTH_CHECK_TIMEOUT" default:"5s"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ValidateForServe checks required config when running the gateway.
// Passkey and both versions are required because the policy cannot be
// constructed without them.
func (c *Config) ValidateForServe() error {
	if c.Passkey == "" {
		return fmt.Errorf("%s - GATEWAY_PASSKEY is required", logPrefix)
	}
	if c.VersionNow == "" {
		return fmt.Errorf("%s - GATEWAY_VERSION_NOW is required", logPrefix)
	}
	if c.VersionMin == "" {
		return fmt.Errorf("%s - GATEWAY_VERSION_MIN is required", logPrefix)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s - GATEWAY_REQUEST_TIMEOUT must be positive", logPrefix)
	}
	if c.HealthCheckTimeout <= 0 {
		return fmt.Errorf("%s - HEALTH_CHECK_TIMEOUT must be positive", logPrefix)
	}
	return nil
}
