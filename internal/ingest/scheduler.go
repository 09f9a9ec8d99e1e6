package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler triggers sync runs on a fixed interval, as a complement to the
// on-demand POST /sync trigger.
type Scheduler struct {
	interval time.Duration
	runner   *Runner
	onRun    func(Summary)
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a Scheduler. onRun, when non-nil, is called after
// every successful run (the server uses it to broadcast summaries).
func NewScheduler(interval time.Duration, runner *Runner, onRun func(Summary), logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		interval: interval,
		runner:   runner,
		onRun:    onRun,
		logger:   logger,
	}
}

// Start begins the scheduling loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.loop()

	s.logger.Info("sync scheduler started", "interval", s.interval)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("sync scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run once on start to catch up after downtime.
	s.runOnce()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *Scheduler) runOnce() {
	summary, err := s.runner.Run(s.ctx)
	if err != nil {
		if s.ctx.Err() != nil {
			return
		}
		s.logger.Error("scheduled sync run failed", "error", err)
		return
	}
	if s.onRun != nil {
		s.onRun(summary)
	}
}
