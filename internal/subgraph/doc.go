// Package subgraph provides the GraphQL client for The Graph's gateway.
//
// The client fetches swap events for a single Uniswap v3 pool, ordered
// ascending by timestamp and paged with skip offsets (page size 1000, the
// gateway maximum). A fetch is all-or-nothing: transport errors, GraphQL
// error payloads, and the page-count ceiling all abort the whole sequence.
package subgraph
