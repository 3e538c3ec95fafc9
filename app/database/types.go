package database

import (
	"time"
)

// Run is one recorded fetch batch.
type Run struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Feeds       int
	Succeeded   int
	Failed      int
	NewArticles int
}

// FeedRun is the recorded outcome of one feed within a run.
type FeedRun struct {
	RunID      string
	FeedURL    string
	Title      string
	Total      int
	New        int
	Duplicates int
	Filtered   int
	Duration   time.Duration
	Error      string // Empty on success
	FetchedAt  time.Time
}

func (r FeedRun) OK() bool {
	return r.Error == ""
}
