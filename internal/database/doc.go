// Package database provides the PostgreSQL connection pool and schema.
//
// A single `traders` table backs the leaderboard: one row per trader
// address, merged additively by the sync pipeline. Uniqueness on address
// underpins the upsert-merge contract.
package database
