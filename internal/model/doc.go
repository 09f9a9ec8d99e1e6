// Package model defines shared data types for the leaderboard service.
//
// Conventions:
//   - Addresses: lower-cased 0x-prefixed hex strings (canonical form)
//   - Monetary values: shopspring decimal, never floats
//   - Timestamps: int64 seconds since Unix epoch (upstream clock)
package model
