package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/dodaa08/uniswap-leaderboard/internal/model"
	"github.com/dodaa08/uniswap-leaderboard/internal/subgraph"
)

// SwapSource provides trade events newer than a checkpoint.
type SwapSource interface {
	FetchSwapsSince(ctx context.Context, sinceExclusive int64) ([]subgraph.Swap, error)
}

// TraderStore persists per-trader aggregates and derives the checkpoint.
type TraderStore interface {
	// Checkpoint returns the watermark: the latest last_trade_at across all
	// trader records as unix seconds, or 0 when no records exist.
	Checkpoint(ctx context.Context) (int64, error)

	// UpsertTraderStats merges each run aggregate into the persisted record
	// with one atomic upsert per trader.
	UpsertTraderStats(ctx context.Context, stats []model.TraderStats) error
}

// Summary reports a completed sync run.
type Summary struct {
	RunID          uuid.UUID `json:"runId"`
	SwapsFetched   int       `json:"swapsFetched"`
	TradersUpdated int       `json:"tradersUpdated"`
	DurationMS     int64     `json:"durationMs"`
}

// Runner executes the ingestion pipeline: checkpoint, fetch, classify,
// aggregate, merge. Concurrent Run calls are coalesced onto a single
// in-flight run; the additive merge would double-count otherwise.
type Runner struct {
	source       SwapSource
	store        TraderStore
	trackedToken string
	logger       *slog.Logger
	group        singleflight.Group
}

// NewRunner creates a Runner for the tracked token.
func NewRunner(source SwapSource, store TraderStore, trackedToken string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		source:       source,
		store:        store,
		trackedToken: trackedToken,
		logger:       logger,
	}
}

// Run performs one sync run. Callers that arrive while a run is in flight
// share that run's result instead of starting their own.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	v, err, shared := r.group.Do("sync", func() (any, error) {
		return r.run(ctx)
	})
	if err != nil {
		return Summary{}, err
	}
	summary := v.(Summary)
	if shared {
		r.logger.Debug("joined in-flight sync run", "run_id", summary.RunID)
	}
	return summary, nil
}

// run is the single-flight body. Any failure aborts without advancing the
// checkpoint, so the next run reprocesses from the same point.
func (r *Runner) run(ctx context.Context) (Summary, error) {
	runID := uuid.New()
	start := time.Now()
	logger := r.logger.With("run_id", runID)

	since, err := r.store.Checkpoint(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("read checkpoint: %w", err)
	}
	logger.Info("sync run started", "since", since)

	swaps, err := r.source.FetchSwapsSince(ctx, since)
	if err != nil {
		return Summary{}, fmt.Errorf("fetch swaps: %w", err)
	}

	if len(swaps) == 0 {
		logger.Info("sync run complete", "swaps", 0, "traders", 0)
		return Summary{RunID: runID, DurationMS: time.Since(start).Milliseconds()}, nil
	}

	trades := make([]ClassifiedTrade, 0, len(swaps))
	for _, swap := range swaps {
		trade, ok, err := classifySwap(swap, r.trackedToken)
		if err != nil {
			return Summary{}, fmt.Errorf("classify swap: %w", err)
		}
		if !ok {
			// Single-pool fetch, so every swap should involve the tracked
			// token. A mismatch is a data-integrity warning, not fatal.
			logger.Warn("swap does not involve tracked token",
				"origin", swap.Origin,
				"token0", swap.Token0.ID,
				"token1", swap.Token1.ID,
			)
			continue
		}
		trades = append(trades, trade)
	}

	stats := aggregateTrades(trades)

	if len(stats) > 0 {
		records := make([]model.TraderStats, 0, len(stats))
		for _, s := range stats {
			records = append(records, s)
		}
		if err := r.store.UpsertTraderStats(ctx, records); err != nil {
			return Summary{}, fmt.Errorf("merge traders: %w", err)
		}
	}

	summary := Summary{
		RunID:          runID,
		SwapsFetched:   len(swaps),
		TradersUpdated: len(stats),
		DurationMS:     time.Since(start).Milliseconds(),
	}

	logger.Info("sync run complete",
		"swaps", summary.SwapsFetched,
		"traders", summary.TradersUpdated,
		"duration", time.Since(start),
	)

	return summary, nil
}
