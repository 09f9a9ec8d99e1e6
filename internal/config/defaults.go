package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultGatewayURL = "https://gateway.thegraph.com/api"
	DefaultPageSize   = 1000 // The Graph's maximum `first` value
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultDBPort     = 5432
	DefaultDBSSLMode  = "prefer"
	DefaultMaxConns   = 10
	DefaultMinConns   = 2
	DefaultMaxPages   = 500
	DefaultServerPort = 3000
)

func (c *Config) applyDefaults() {
	// Subgraph defaults
	if c.Subgraph.GatewayURL == "" {
		c.Subgraph.GatewayURL = DefaultGatewayURL
	}
	if c.Subgraph.PageSize == 0 {
		c.Subgraph.PageSize = DefaultPageSize
	}
	if c.Subgraph.Timeout == 0 {
		c.Subgraph.Timeout = DefaultTimeout
	}
	if c.Subgraph.MaxRetries == 0 {
		c.Subgraph.MaxRetries = DefaultMaxRetries
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Sync defaults
	if c.Sync.MaxPages == 0 {
		c.Sync.MaxPages = DefaultMaxPages
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
}
