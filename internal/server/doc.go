// Package server exposes the HTTP API.
//
// Routes:
//   - GET  /health              liveness check
//   - POST /api/v1/sync         trigger an ingestion run
//   - GET  /api/v1/leaderboard  traders by volume, paginated
//   - GET  /api/v1/trader/:address
//   - GET  /api/v1/ws           websocket stream of run summaries
package server
