package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 5

var _ Runner = (*Orchestrator)(nil)

// Orchestrator fetches a batch of feeds with at most a fixed number in flight.
// A failing feed is recorded in the report and never stops the others.
type Orchestrator struct {
	fetcher     Fetcher
	store       ArticleStore
	history     HistoryRecorder
	concurrency int
}

func NewOrchestrator(fetcher Fetcher, store ArticleStore, concurrency int) *Orchestrator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Orchestrator{
		fetcher:     fetcher,
		store:       store,
		concurrency: concurrency,
	}
}

func (o *Orchestrator) SetHistory(history HistoryRecorder) {
	o.history = history
}

func (o *Orchestrator) Run(ctx context.Context, urls []string) (*Report, error) {
	if err := o.store.Check(); err != nil {
		return nil, fmt.Errorf("failed to access store: %w", err)
	}

	report := &Report{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Results:   make([]FeedResult, len(urls)),
	}

	queue := make(chan int, len(urls))
	for i := range urls {
		queue <- i
	}
	close(queue)

	workers := min(o.concurrency, len(urls))

	slog.Debug("Fetch run started", "run_id", report.ID, "feeds", len(urls), "workers", workers)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		workerID := i
		g.Go(func() error {
			for idx := range queue {
				if err := gctx.Err(); err != nil {
					report.Results[idx] = FeedResult{URL: urls[idx], Err: err}
					continue
				}
				report.Results[idx] = o.fetchFeed(gctx, workerID, urls[idx])
			}
			return nil
		})
	}
	// Workers never return an error; failures live in the report.
	_ = g.Wait()

	report.FinishedAt = time.Now().UTC()

	slog.Info("Fetch run completed",
		"run_id", report.ID,
		"duration", report.Duration(),
		"succeeded", report.Succeeded(),
		"failed", report.Failed(),
		"new", report.NewArticles())

	if o.history != nil {
		if err := o.history.RecordReport(report); err != nil {
			slog.Warn("Failed to record fetch history", "run_id", report.ID, "error", err)
		}
	}

	return report, nil
}

func (o *Orchestrator) fetchFeed(ctx context.Context, workerID int, feedURL string) FeedResult {
	task := NewFetchFeedTask(feedURL, o.fetcher, o.store)

	if err := o.executeTask(ctx, workerID, task); err != nil {
		task.Result.Err = err
	}
	task.Result.Duration = task.GetDuration()

	return task.Result
}

// executeTask runs one task and turns a panic into its error.
func (o *Orchestrator) executeTask(ctx context.Context, workerID int, task TaskInterface) (err error) {
	task.Start()

	slog.Debug("Worker executing task", "worker_id", workerID, "task_id", task.GetID(), "type", string(task.GetType()), "feed", task.GetFeedURL())

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while fetching feed: %v", r)
			slog.Error("Worker task panicked", "worker_id", workerID, "task_id", task.GetID(), "feed", task.GetFeedURL(), "panic", r)
		}
	}()

	if err := task.Execute(ctx); err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "task_id", task.GetID(), "type", string(task.GetType()), "feed", task.GetFeedURL(), "error", err)
		return err
	}

	return nil
}
