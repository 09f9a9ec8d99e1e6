package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dodaa08/uniswap-leaderboard/internal/model"
	"github.com/dodaa08/uniswap-leaderboard/internal/subgraph"
)

// fakeSource serves a fixed batch of swaps and records fetch calls.
type fakeSource struct {
	mu    sync.Mutex
	swaps []subgraph.Swap
	err   error
	calls int
	since []int64

	// When set, FetchSwapsSince signals entered once and blocks until gate
	// closes. Used to hold a run in flight.
	entered chan struct{}
	gate    chan struct{}
}

func (f *fakeSource) FetchSwapsSince(ctx context.Context, sinceExclusive int64) ([]subgraph.Swap, error) {
	f.mu.Lock()
	f.calls++
	f.since = append(f.since, sinceExclusive)
	entered, gate := f.entered, f.gate
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
		<-gate
	}

	if f.err != nil {
		return nil, f.err
	}
	return f.swaps, nil
}

func (f *fakeSource) setSwaps(swaps []subgraph.Swap) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.swaps = swaps
}

// memStore applies the merge rule in memory: additive counts and volume,
// LEAST/GREATEST timestamps, checkpoint derived from MAX(last_trade_at).
type memStore struct {
	mu      sync.Mutex
	records map[string]model.TraderStats
	err     error
	upserts int
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]model.TraderStats)}
}

func (s *memStore) Checkpoint(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var max int64
	for _, r := range s.records {
		if r.LastTradeAt > max {
			max = r.LastTradeAt
		}
	}
	return max, nil
}

func (s *memStore) UpsertTraderStats(ctx context.Context, stats []model.TraderStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.upserts++
	for _, st := range stats {
		prev, exists := s.records[st.Address]
		if !exists {
			s.records[st.Address] = st
			continue
		}
		prev.BuyCount += st.BuyCount
		prev.SellCount += st.SellCount
		prev.TotalVolumeUSD = prev.TotalVolumeUSD.Add(st.TotalVolumeUSD)
		if st.FirstTradeAt < prev.FirstTradeAt {
			prev.FirstTradeAt = st.FirstTradeAt
		}
		if st.LastTradeAt > prev.LastTradeAt {
			prev.LastTradeAt = st.LastTradeAt
		}
		s.records[st.Address] = prev
	}
	return nil
}

func (s *memStore) get(addr string) (model.TraderStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[addr]
	return r, ok
}

func TestRunnerRun(t *testing.T) {
	t.Run("end to end", func(t *testing.T) {
		source := &fakeSource{swaps: []subgraph.Swap{
			{
				Timestamp: "1000", AmountUSD: "100", Origin: "0xAAA",
				Token0: subgraph.Token{ID: trackedToken}, Token1: subgraph.Token{ID: "0xother"},
				Amount0: "-5", Amount1: "3",
			},
			{
				Timestamp: "1010", AmountUSD: "50", Origin: "0xAAA",
				Token0: subgraph.Token{ID: "0xother"}, Token1: subgraph.Token{ID: trackedToken},
				Amount0: "-3", Amount1: "3",
			},
		}}
		store := newMemStore()
		runner := NewRunner(source, store, trackedToken, nil)

		summary, err := runner.Run(context.Background())
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		if summary.SwapsFetched != 2 {
			t.Errorf("SwapsFetched = %d, want 2", summary.SwapsFetched)
		}
		if summary.TradersUpdated != 1 {
			t.Errorf("TradersUpdated = %d, want 1", summary.TradersUpdated)
		}

		rec, ok := store.get("0xaaa")
		if !ok {
			t.Fatal("trader 0xaaa not persisted")
		}
		if rec.BuyCount != 1 || rec.SellCount != 1 {
			t.Errorf("counts = (%d, %d), want (1, 1)", rec.BuyCount, rec.SellCount)
		}
		if !rec.TotalVolumeUSD.Equal(decimal.RequireFromString("150")) {
			t.Errorf("volume = %s, want 150", rec.TotalVolumeUSD)
		}
		if rec.FirstTradeAt != 1000 || rec.LastTradeAt != 1010 {
			t.Errorf("window = [%d, %d], want [1000, 1010]", rec.FirstTradeAt, rec.LastTradeAt)
		}
	})

	t.Run("empty fetch short-circuits", func(t *testing.T) {
		source := &fakeSource{}
		store := newMemStore()
		runner := NewRunner(source, store, trackedToken, nil)

		summary, err := runner.Run(context.Background())
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if summary.SwapsFetched != 0 || summary.TradersUpdated != 0 {
			t.Errorf("summary = %+v, want zero counts", summary)
		}
		if store.upserts != 0 {
			t.Errorf("upserts = %d, want 0", store.upserts)
		}
	})

	t.Run("checkpoint feeds the fetch", func(t *testing.T) {
		store := newMemStore()
		store.records["0xaaa"] = model.TraderStats{Address: "0xaaa", LastTradeAt: 500}
		source := &fakeSource{}
		runner := NewRunner(source, store, trackedToken, nil)

		if _, err := runner.Run(context.Background()); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if len(source.since) != 1 || source.since[0] != 500 {
			t.Errorf("fetch since = %v, want [500]", source.since)
		}
	})

	t.Run("fetch failure leaves store untouched", func(t *testing.T) {
		source := &fakeSource{err: errors.New("gateway down")}
		store := newMemStore()
		runner := NewRunner(source, store, trackedToken, nil)

		if _, err := runner.Run(context.Background()); err == nil {
			t.Fatal("expected fetch error")
		}
		if store.upserts != 0 {
			t.Errorf("upserts = %d, want 0", store.upserts)
		}
	})

	t.Run("parse failure aborts the run", func(t *testing.T) {
		source := &fakeSource{swaps: []subgraph.Swap{
			{
				Timestamp: "1000", AmountUSD: "not-a-number", Origin: "0xAAA",
				Token0: subgraph.Token{ID: trackedToken}, Token1: subgraph.Token{ID: "0xother"},
				Amount0: "-5", Amount1: "3",
			},
		}}
		store := newMemStore()
		runner := NewRunner(source, store, trackedToken, nil)

		if _, err := runner.Run(context.Background()); err == nil {
			t.Fatal("expected classify error")
		}
		if store.upserts != 0 {
			t.Errorf("upserts = %d, want 0", store.upserts)
		}
	})

	t.Run("merge failure surfaces", func(t *testing.T) {
		source := &fakeSource{swaps: []subgraph.Swap{
			{
				Timestamp: "1000", AmountUSD: "100", Origin: "0xAAA",
				Token0: subgraph.Token{ID: trackedToken}, Token1: subgraph.Token{ID: "0xother"},
				Amount0: "-5", Amount1: "3",
			},
		}}
		store := newMemStore()
		store.err = errors.New("write failed")
		runner := NewRunner(source, store, trackedToken, nil)

		if _, err := runner.Run(context.Background()); err == nil {
			t.Fatal("expected merge error")
		}
	})

	t.Run("mismatched swap skipped but run continues", func(t *testing.T) {
		source := &fakeSource{swaps: []subgraph.Swap{
			{
				Timestamp: "1000", AmountUSD: "100", Origin: "0xAAA",
				Token0: subgraph.Token{ID: "0xfoo"}, Token1: subgraph.Token{ID: "0xbar"},
				Amount0: "-5", Amount1: "3",
			},
			{
				Timestamp: "1010", AmountUSD: "50", Origin: "0xBBB",
				Token0: subgraph.Token{ID: trackedToken}, Token1: subgraph.Token{ID: "0xother"},
				Amount0: "2", Amount1: "-1",
			},
		}}
		store := newMemStore()
		runner := NewRunner(source, store, trackedToken, nil)

		summary, err := runner.Run(context.Background())
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if summary.SwapsFetched != 2 {
			t.Errorf("SwapsFetched = %d, want 2", summary.SwapsFetched)
		}
		if summary.TradersUpdated != 1 {
			t.Errorf("TradersUpdated = %d, want 1", summary.TradersUpdated)
		}
		if _, ok := store.get("0xaaa"); ok {
			t.Error("mismatched swap must not produce a record")
		}
	})

	t.Run("two disjoint runs equal one combined run", func(t *testing.T) {
		batchA := []subgraph.Swap{
			{
				Timestamp: "1000", AmountUSD: "100", Origin: "0xAAA",
				Token0: subgraph.Token{ID: trackedToken}, Token1: subgraph.Token{ID: "0xother"},
				Amount0: "-5", Amount1: "3",
			},
		}
		batchB := []subgraph.Swap{
			{
				Timestamp: "1010", AmountUSD: "50", Origin: "0xAAA",
				Token0: subgraph.Token{ID: trackedToken}, Token1: subgraph.Token{ID: "0xother"},
				Amount0: "2", Amount1: "-1",
			},
		}

		// Two sequential runs.
		source := &fakeSource{swaps: batchA}
		sequential := newMemStore()
		runner := NewRunner(source, sequential, trackedToken, nil)
		if _, err := runner.Run(context.Background()); err != nil {
			t.Fatalf("run A failed: %v", err)
		}
		source.setSwaps(batchB)
		if _, err := runner.Run(context.Background()); err != nil {
			t.Fatalf("run B failed: %v", err)
		}

		// One combined run into a fresh store.
		combined := newMemStore()
		runner2 := NewRunner(&fakeSource{swaps: append(append([]subgraph.Swap{}, batchA...), batchB...)}, combined, trackedToken, nil)
		if _, err := runner2.Run(context.Background()); err != nil {
			t.Fatalf("combined run failed: %v", err)
		}

		seq, _ := sequential.get("0xaaa")
		comb, _ := combined.get("0xaaa")
		assertStatsEqual(t, seq, comb)
		if seq.FirstTradeAt > seq.LastTradeAt {
			t.Errorf("window inverted: [%d, %d]", seq.FirstTradeAt, seq.LastTradeAt)
		}
	})

	t.Run("concurrent triggers share one run", func(t *testing.T) {
		source := &fakeSource{
			entered: make(chan struct{}, 2),
			gate:    make(chan struct{}),
		}
		store := newMemStore()
		runner := NewRunner(source, store, trackedToken, nil)

		results := make(chan Summary, 2)
		errs := make(chan error, 2)
		for i := 0; i < 2; i++ {
			go func() {
				s, err := runner.Run(context.Background())
				results <- s
				errs <- err
			}()
		}

		// Wait for the first caller to be inside the fetch, give the second
		// time to join the in-flight run, then release.
		<-source.entered
		time.Sleep(50 * time.Millisecond)
		close(source.gate)

		s1, s2 := <-results, <-results
		if err := <-errs; err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if err := <-errs; err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		if s1.RunID != s2.RunID {
			t.Errorf("run ids differ: %s vs %s (runs were not coalesced)", s1.RunID, s2.RunID)
		}
		if source.calls != 1 {
			t.Errorf("fetch calls = %d, want 1", source.calls)
		}
	})
}
