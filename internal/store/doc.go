// Package store implements the trader-record persistence contract.
//
// The merge is an INSERT ... ON CONFLICT upsert so each trader's record is
// updated in one atomic statement; an application-side read-modify-write
// would lose updates if runs ever overlapped. The sync checkpoint is derived
// from the merged data itself (MAX last_trade_at), never stored separately.
package store
