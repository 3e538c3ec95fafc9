package tasks

import (
	"context"

	"github.com/lysyi3m/navireader/app/feed"
	"github.com/lysyi3m/navireader/app/store"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) (*feed.Feed, error)
}

// ArticleStore is the part of the store a fetch run writes to.
type ArticleStore interface {
	Check() error
	InsertIfAbsent(a store.Article) (bool, error)
	SaveFeedMeta(meta store.FeedMeta) error
}

// HistoryRecorder persists finished reports. Failures never fail a run.
type HistoryRecorder interface {
	RecordReport(report *Report) error
}

type Runner interface {
	Run(ctx context.Context, urls []string) (*Report, error)
}

type FeedListLoader interface {
	LoadFeedList() ([]string, error)
}

// RefreshScheduler runs fetches in the background for the HTTP server.
//
//	scheduler := NewScheduler(orchestrator, store, interval)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.Trigger()
type RefreshScheduler interface {
	Start()
	Stop()
	Trigger() bool
	LastReport() *Report
}
