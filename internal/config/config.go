package config

import "time"

// Config is the root configuration for the leaderboard service.
type Config struct {
	Subgraph SubgraphConfig `yaml:"subgraph"`
	Database DBConfig       `yaml:"database"`
	Sync     SyncConfig     `yaml:"sync"`
	Server   ServerConfig   `yaml:"server"`
}

// SubgraphConfig holds The Graph gateway settings for the tracked pool.
type SubgraphConfig struct {
	GatewayURL   string        `yaml:"gateway_url"`
	APIKey       string        `yaml:"api_key"`
	SubgraphID   string        `yaml:"subgraph_id"`
	PoolID       string        `yaml:"pool_id"`       // Liquidity pool contract address
	TrackedToken string        `yaml:"tracked_token"` // Token contract address the leaderboard tracks
	PageSize     int           `yaml:"page_size"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
}

// DBConfig holds the PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// SyncConfig holds ingestion run settings.
type SyncConfig struct {
	// MaxPages caps the number of pages a single fetch may request before
	// aborting, guarding against an upstream that never returns a short page.
	MaxPages int `yaml:"max_pages"`

	// Interval enables scheduled sync runs when > 0. Zero leaves syncing
	// entirely to POST /sync.
	Interval time.Duration `yaml:"interval"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}
