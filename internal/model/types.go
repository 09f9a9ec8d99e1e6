package model

import "github.com/shopspring/decimal"

// Trader is the persisted per-address record. One row per unique trader,
// created on first merge and mutated only by the additive upsert.
type Trader struct {
	Address        string          // Primary key, lower-cased
	BuyCount       int64           // Buys of the tracked token
	SellCount      int64           // Sells of the tracked token
	TotalVolumeUSD decimal.Decimal // Monotonically non-decreasing
	FirstTradeAt   int64           // Earliest trade seen (unix seconds)
	LastTradeAt    int64           // Latest trade seen (unix seconds)
}

// TraderStats is one trader's aggregate for a single sync run. It carries
// the same fields as Trader but covers only the trades of that run; the
// store folds it into the persisted record.
type TraderStats struct {
	Address        string
	BuyCount       int64
	SellCount      int64
	TotalVolumeUSD decimal.Decimal
	FirstTradeAt   int64
	LastTradeAt    int64
}
