package subgraph

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrTooManyPages is returned when a fetch exceeds the page-count ceiling,
// which indicates an upstream that keeps returning full pages forever.
var ErrTooManyPages = errors.New("subgraph: page ceiling exceeded")

// Token identifies one side of the pool.
type Token struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
}

// Swap is a raw trade event as returned by the subgraph. Numeric fields stay
// strings here; parsing happens in the classifier where a failure can abort
// the run.
type Swap struct {
	Timestamp string `json:"timestamp"`
	AmountUSD string `json:"amountUSD"`
	Origin    string `json:"origin"`
	Token0    Token  `json:"token0"`
	Token1    Token  `json:"token1"`
	Amount0   string `json:"amount0"`
	Amount1   string `json:"amount1"`
}

const swapsQuery = `
query poolSwapsSince($pool: String!, $since: BigInt!, $first: Int!, $skip: Int!) {
  swaps(
    first: $first,
    skip: $skip,
    orderBy: timestamp,
    orderDirection: asc,
    where: { pool: $pool, timestamp_gt: $since }
  ) {
    timestamp
    amountUSD
    origin
    token0 { id symbol }
    token1 { id symbol }
    amount0
    amount1
  }
}`

type swapsData struct {
	Swaps []Swap `json:"swaps"`
}

// FetchSwapsSince returns every swap on the tracked pool with a timestamp
// strictly greater than sinceExclusive, paging until the upstream returns a
// short or empty page. Any failure discards the whole fetch.
func (c *Client) FetchSwapsSince(ctx context.Context, sinceExclusive int64) ([]Swap, error) {
	var all []Swap
	skip := 0
	start := time.Now()

	for page := 0; ; page++ {
		if page >= c.maxPages {
			return nil, fmt.Errorf("%w: fetched %d pages of %d swaps", ErrTooManyPages, page, c.pageSize)
		}

		variables := map[string]any{
			"pool":  c.poolID,
			"since": strconv.FormatInt(sinceExclusive, 10),
			"first": c.pageSize,
			"skip":  skip,
		}

		var data swapsData
		if err := c.doQuery(ctx, swapsQuery, variables, &data); err != nil {
			return nil, fmt.Errorf("fetch swaps page %d: %w", page, err)
		}

		if len(data.Swaps) == 0 {
			break
		}

		all = append(all, data.Swaps...)

		if len(data.Swaps) < c.pageSize {
			break
		}
		skip += c.pageSize
	}

	c.logger.Debug("fetched swaps",
		"count", len(all),
		"since", sinceExclusive,
		"duration", time.Since(start),
	)

	return all, nil
}
