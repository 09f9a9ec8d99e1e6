// Package ingest implements the ingestion pipeline.
//
// One run is a strict sequence: read the checkpoint, fetch all newer swaps,
// classify each as a buy or sell of the tracked token, reduce to per-trader
// aggregates, and merge them into storage with atomic upserts. The
// checkpoint is derived from merged data (MAX last_trade_at), so a failed
// run leaves it untouched and the next run reprocesses from the same point.
//
// Runs never overlap: concurrent triggers are coalesced through
// singleflight, because two runs reading the same checkpoint would merge
// the same events twice under the additive rule.
package ingest
