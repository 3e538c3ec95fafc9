package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

var _ RefreshScheduler = (*Scheduler)(nil)

// Scheduler refreshes the stored feed list at startup, on every tick and on
// demand. Runs never overlap; triggers that arrive during a run collapse into
// one follow-up run.
type Scheduler struct {
	runner   Runner
	feeds    FeedListLoader
	interval time.Duration

	trigger chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu         sync.Mutex
	lastReport *Report
}

func NewScheduler(runner Runner, feeds FeedListLoader, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner:   runner,
		feeds:    feeds,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		var tick <-chan time.Time
		if s.interval > 0 {
			ticker := time.NewTicker(s.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		s.refresh()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-tick:
				s.refresh()
			case <-s.trigger:
				s.refresh()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Trigger requests a refresh. It reports false when one is already pending.
func (s *Scheduler) Trigger() bool {
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Scheduler) LastReport() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}

func (s *Scheduler) refresh() {
	urls, err := s.feeds.LoadFeedList()
	if err != nil {
		slog.Error("Failed to load feed list", "error", err)
		return
	}
	if len(urls) == 0 {
		slog.Debug("No feeds to refresh")
		return
	}

	report, err := s.runner.Run(s.ctx, urls)
	if err != nil {
		slog.Error("Refresh failed", "error", err)
		return
	}

	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()
}
