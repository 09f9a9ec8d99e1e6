package ingest

import "github.com/dodaa08/uniswap-leaderboard/internal/model"

// aggregateTrades reduces a run's classified trades into one stats record
// per trader. Pure single-pass reduction: input order does not matter, and
// two trades with identical timestamps both count.
func aggregateTrades(trades []ClassifiedTrade) map[string]model.TraderStats {
	stats := make(map[string]model.TraderStats)

	for _, trade := range trades {
		s, seen := stats[trade.Trader]
		if !seen {
			s = model.TraderStats{
				Address:      trade.Trader,
				FirstTradeAt: trade.OccurredAt,
				LastTradeAt:  trade.OccurredAt,
			}
		}

		if trade.IsBuy {
			s.BuyCount++
		} else {
			s.SellCount++
		}
		s.TotalVolumeUSD = s.TotalVolumeUSD.Add(trade.VolumeUSD)

		if trade.OccurredAt < s.FirstTradeAt {
			s.FirstTradeAt = trade.OccurredAt
		}
		if trade.OccurredAt > s.LastTradeAt {
			s.LastTradeAt = trade.OccurredAt
		}

		stats[trade.Trader] = s
	}

	return stats
}
