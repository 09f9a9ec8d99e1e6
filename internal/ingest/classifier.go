package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dodaa08/uniswap-leaderboard/internal/subgraph"
)

// ClassifiedTrade is a swap reduced to the facts the aggregator needs.
type ClassifiedTrade struct {
	Trader     string // Lower-cased origin address
	IsBuy      bool
	VolumeUSD  decimal.Decimal
	OccurredAt int64 // Unix seconds
}

// classifySwap determines whether a swap bought or sold the tracked token.
//
// Sign convention: the subgraph reports amounts from the pool's perspective,
// so a negative amount on the tracked-token side means the token left the
// pool, i.e. the trader bought it. A non-negative amount is a sell.
//
// Returns ok=false when neither token side matches the tracked token; that
// swap is skipped. A parse failure on any numeric field is an error, not a
// skip: it means the upstream schema drifted and silently dropping events
// would mask it.
func classifySwap(swap subgraph.Swap, trackedToken string) (ClassifiedTrade, bool, error) {
	occurredAt, err := strconv.ParseInt(swap.Timestamp, 10, 64)
	if err != nil {
		return ClassifiedTrade{}, false, fmt.Errorf("parse timestamp %q: %w", swap.Timestamp, err)
	}

	amountUSD, err := decimal.NewFromString(swap.AmountUSD)
	if err != nil {
		return ClassifiedTrade{}, false, fmt.Errorf("parse amountUSD %q: %w", swap.AmountUSD, err)
	}

	amount0, err := decimal.NewFromString(swap.Amount0)
	if err != nil {
		return ClassifiedTrade{}, false, fmt.Errorf("parse amount0 %q: %w", swap.Amount0, err)
	}

	amount1, err := decimal.NewFromString(swap.Amount1)
	if err != nil {
		return ClassifiedTrade{}, false, fmt.Errorf("parse amount1 %q: %w", swap.Amount1, err)
	}

	var trackedAmount decimal.Decimal
	switch {
	case strings.EqualFold(swap.Token0.ID, trackedToken):
		trackedAmount = amount0
	case strings.EqualFold(swap.Token1.ID, trackedToken):
		trackedAmount = amount1
	default:
		return ClassifiedTrade{}, false, nil
	}

	return ClassifiedTrade{
		Trader:     strings.ToLower(swap.Origin),
		IsBuy:      trackedAmount.IsNegative(),
		VolumeUSD:  amountUSD.Abs(),
		OccurredAt: occurredAt,
	}, true, nil
}
