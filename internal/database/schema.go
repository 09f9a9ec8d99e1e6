package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies the leaderboard schema. Statements are idempotent so the
// service can run them unconditionally at startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS traders (
			address          TEXT PRIMARY KEY,
			buy_count        BIGINT NOT NULL DEFAULT 0,
			sell_count       BIGINT NOT NULL DEFAULT 0,
			total_volume_usd NUMERIC NOT NULL DEFAULT 0,
			first_trade_at   TIMESTAMPTZ NOT NULL,
			last_trade_at    TIMESTAMPTZ NOT NULL
		)`,
		// Leaderboard reads sort by volume; checkpoint reads take MAX(last_trade_at).
		`CREATE INDEX IF NOT EXISTS idx_traders_volume ON traders (total_volume_usd DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_traders_last_trade ON traders (last_trade_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	return nil
}
