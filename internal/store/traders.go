package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dodaa08/uniswap-leaderboard/internal/model"
)

// ErrNotFound is returned when a trader address has no record.
var ErrNotFound = errors.New("store: trader not found")

// Store persists trader records in PostgreSQL.
type Store struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Store.
func New(db *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Checkpoint returns the fetch watermark: the latest last_trade_at across
// all trader records as unix seconds, or 0 when the table is empty. The
// value is always derived; nothing ever writes it directly.
func (s *Store) Checkpoint(ctx context.Context) (int64, error) {
	var watermark int64
	err := s.db.QueryRow(ctx,
		`SELECT COALESCE(EXTRACT(EPOCH FROM MAX(last_trade_at))::BIGINT, 0) FROM traders`,
	).Scan(&watermark)
	if err != nil {
		return 0, fmt.Errorf("read checkpoint: %w", err)
	}
	return watermark, nil
}

// UpsertTraderStats merges run aggregates into persisted records, one atomic
// upsert per trader: counts and volume add, the trade window only widens.
// There is no cross-trader transaction; a failure mid-batch leaves earlier
// traders merged, which the derived checkpoint self-corrects on the next run.
func (s *Store) UpsertTraderStats(ctx context.Context, stats []model.TraderStats) error {
	if len(stats) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, st := range stats {
		batch.Queue(`
			INSERT INTO traders (address, buy_count, sell_count, total_volume_usd, first_trade_at, last_trade_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (address) DO UPDATE SET
				buy_count        = traders.buy_count + EXCLUDED.buy_count,
				sell_count       = traders.sell_count + EXCLUDED.sell_count,
				total_volume_usd = traders.total_volume_usd + EXCLUDED.total_volume_usd,
				first_trade_at   = LEAST(traders.first_trade_at, EXCLUDED.first_trade_at),
				last_trade_at    = GREATEST(traders.last_trade_at, EXCLUDED.last_trade_at)
		`,
			st.Address,
			st.BuyCount,
			st.SellCount,
			st.TotalVolumeUSD,
			time.Unix(st.FirstTradeAt, 0).UTC(),
			time.Unix(st.LastTradeAt, 0).UTC(),
		)
	}

	start := time.Now()
	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range stats {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert trader: %w", err)
		}
	}

	s.logger.Debug("merged trader stats",
		"traders", len(stats),
		"duration", time.Since(start),
	)

	return nil
}

// Leaderboard returns trader records ordered by total volume descending.
func (s *Store) Leaderboard(ctx context.Context, limit, offset int) ([]model.Trader, error) {
	rows, err := s.db.Query(ctx, `
		SELECT address, buy_count, sell_count, total_volume_usd, first_trade_at, last_trade_at
		FROM traders
		ORDER BY total_volume_usd DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	traders := make([]model.Trader, 0, limit)
	for rows.Next() {
		t, err := scanTrader(rows)
		if err != nil {
			return nil, err
		}
		traders = append(traders, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}

	return traders, nil
}

// TraderByAddress returns the record for a canonical (lower-cased) address.
func (s *Store) TraderByAddress(ctx context.Context, address string) (model.Trader, error) {
	row := s.db.QueryRow(ctx, `
		SELECT address, buy_count, sell_count, total_volume_usd, first_trade_at, last_trade_at
		FROM traders
		WHERE address = $1
	`, strings.ToLower(address))

	t, err := scanTrader(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Trader{}, ErrNotFound
	}
	if err != nil {
		return model.Trader{}, err
	}
	return t, nil
}

func scanTrader(row pgx.Row) (model.Trader, error) {
	var t model.Trader
	var volume decimal.Decimal
	var first, last time.Time
	if err := row.Scan(&t.Address, &t.BuyCount, &t.SellCount, &volume, &first, &last); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Trader{}, err
		}
		return model.Trader{}, fmt.Errorf("scan trader: %w", err)
	}
	t.TotalVolumeUSD = volume
	t.FirstTradeAt = first.Unix()
	t.LastTradeAt = last.Unix()
	return t, nil
}
