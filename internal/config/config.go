// Package config loads and validates ClaimAudit configuration files.
package config

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// Config is the top-level ClaimAudit configuration
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Server ServerConfig `yaml:"server"`
}

// EngineConfig selects which audit modules run and whether scorecards
// are redacted by default
type EngineConfig struct {
	EnableFinancial        bool `yaml:"enable_financial"`
	EnableWaterRemediation bool `yaml:"enable_water_remediation"`
	EnableFlooring         bool `yaml:"enable_flooring"`
	EnableGeneralRepair    bool `yaml:"enable_general_repair"`
	AutoRedactPII          bool `yaml:"auto_redact_pii"`
}

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Host            string  `yaml:"host"`
	Port            int     `yaml:"port"`
	ReadTimeoutSec  int     `yaml:"read_timeout_sec"`
	WriteTimeoutSec int     `yaml:"write_timeout_sec"`
	IdleTimeoutSec  int     `yaml:"idle_timeout_sec"`
	RequestTimeout  int     `yaml:"request_timeout_sec"`
	RateLimitRPS    float64 `yaml:"rate_limit_rps"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	MaxBodyBytes    int64   `yaml:"max_body_bytes"`
}

// GetDefaultConfig returns the configuration used when no file is given:
// every audit module enabled, redaction off, server on :8080.
func GetDefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			EnableFinancial:        true,
			EnableWaterRemediation: true,
			EnableFlooring:         true,
			EnableGeneralRepair:    true,
			AutoRedactPII:          false,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeoutSec:  15,
			WriteTimeoutSec: 30,
			IdleTimeoutSec:  60,
			RequestTimeout:  30,
			RateLimitRPS:    25,
			RateLimitBurst:  50,
			MaxBodyBytes:    4 << 20,
		},
	}
}

// LoadConfig loads configuration from file
func LoadConfig(configPath string) (*Config, error) {
	data, err := ioutil.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if issues := config.Validate(); len(issues) > 0 {
		return nil, fmt.Errorf("invalid config: %v", issues)
	}
	return config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config, configPath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := ioutil.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks the configuration for consistency issues and returns
// a list of problems found
func (c *Config) Validate() []string {
	var issues []string

	if !c.Engine.EnableFinancial && !c.Engine.EnableWaterRemediation &&
		!c.Engine.EnableFlooring && !c.Engine.EnableGeneralRepair {
		issues = append(issues, "all audit modules disabled; audits would always be empty")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server port %d out of range", c.Server.Port))
	}
	if c.Server.ReadTimeoutSec < 0 || c.Server.WriteTimeoutSec < 0 || c.Server.IdleTimeoutSec < 0 {
		issues = append(issues, "server timeouts must not be negative")
	}
	if c.Server.RequestTimeout < 0 {
		issues = append(issues, "request timeout must not be negative")
	}
	if c.Server.RateLimitRPS < 0 {
		issues = append(issues, "rate limit rps must not be negative")
	}
	if c.Server.RateLimitBurst < 0 {
		issues = append(issues, "rate limit burst must not be negative")
	}
	if c.Server.MaxBodyBytes < 0 {
		issues = append(issues, "max body bytes must not be negative")
	}

	return issues
}
