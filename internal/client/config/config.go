// Package config holds the signupctl settings: defaults, then an optional
// JSON file (-c/-config), then flags.
package config

import "time"

// Config holds runtime settings for signupctl.
//
// OperatorToken is sent with operator-only calls. When it is empty the CLI
// can mint one locally from SecretKey with the "operator-token" command.
type Config struct {
	ServerEndpointAddr    string
	CallTimeout           time.Duration
	OperatorToken         string
	OperatorName          string
	SecretKey             string
	OperatorTokenValidity time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.CallTimeout = 5 * time.Second
	c.OperatorToken = ""
	c.OperatorName = "operator"
	c.SecretKey = ""
	c.OperatorTokenValidity = 60 * time.Minute
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
