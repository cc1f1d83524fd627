package scheduler

import (
	"context"
	"sync"
	"time"

	"phrasebook/internal/logger"
	"phrasebook/internal/service"
)

// Refresher is the part of the keyword service the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context) service.LoadResult
}

type Scheduler struct {
	refresher  Refresher
	interval   time.Duration
	stopCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	cancelFunc context.CancelFunc // cancels the current refresh
	mu         sync.Mutex         // protects cancelFunc
}

func New(refresher Refresher, interval time.Duration) *Scheduler {
	return &Scheduler{
		refresher: refresher,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start runs a refresh every interval. The startup load is the caller's
// job, so the first refresh happens one interval after Start.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	logger.Info("scheduler started", "module", "scheduler", "action", "refresh", "resource", "keyword", "result", "ok", "interval_ms", s.interval.Milliseconds())
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		if s.cancelFunc != nil {
			s.cancelFunc()
		}
		s.mu.Unlock()

		close(s.stopCh)
		s.wg.Wait()
		logger.Info("scheduler stopped", "module", "scheduler", "action", "refresh", "resource", "keyword", "result", "ok")
	})
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refresh()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) refresh() {
	// a refresh may not outlive its interval
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)

	s.mu.Lock()
	s.cancelFunc = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.cancelFunc = nil
		s.mu.Unlock()
	}()

	result := s.refresher.Refresh(ctx)
	if ctx.Err() != nil {
		logger.Warn("scheduled refresh cancelled", "module", "scheduler", "action", "refresh", "resource", "keyword", "result", "cancelled")
		return
	}
	if result.RemoteErr != nil {
		logger.Warn("scheduled refresh fell back", "module", "scheduler", "action", "refresh", "resource", "keyword", "result", "failed", "source", result.Source, "error", result.RemoteErr)
		return
	}
	logger.Info("scheduled refresh completed", "module", "scheduler", "action", "refresh", "resource", "keyword", "result", "ok", "source", result.Source, "count", result.Count)
}
