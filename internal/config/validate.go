package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Subgraph.APIKey == "" {
		return errors.New("subgraph.api_key is required")
	}
	if c.Subgraph.SubgraphID == "" {
		return errors.New("subgraph.subgraph_id is required")
	}
	if c.Subgraph.PoolID == "" {
		return errors.New("subgraph.pool_id is required")
	}
	if c.Subgraph.TrackedToken == "" {
		return errors.New("subgraph.tracked_token is required")
	}
	if !strings.HasPrefix(c.Subgraph.TrackedToken, "0x") {
		return fmt.Errorf("subgraph.tracked_token must be a 0x-prefixed address, got %q", c.Subgraph.TrackedToken)
	}
	if c.Subgraph.PageSize < 1 || c.Subgraph.PageSize > 1000 {
		return fmt.Errorf("subgraph.page_size must be between 1 and 1000, got %d", c.Subgraph.PageSize)
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if c.Sync.MaxPages < 1 {
		return errors.New("sync.max_pages must be >= 1")
	}
	if c.Sync.Interval < 0 {
		return errors.New("sync.interval cannot be negative")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
