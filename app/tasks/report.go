package tasks

import (
	"time"
)

// FeedResult is the outcome of fetching one feed.
type FeedResult struct {
	URL        string
	Title      string
	Total      int
	New        int
	Duplicates int
	Filtered   int
	Duration   time.Duration
	Err        error
}

func (r FeedResult) OK() bool {
	return r.Err == nil
}

// Report aggregates one batch run. Results follow the input URL order.
type Report struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []FeedResult
}

func (r *Report) Succeeded() int {
	count := 0
	for _, result := range r.Results {
		if result.OK() {
			count++
		}
	}
	return count
}

func (r *Report) Failed() int {
	return len(r.Results) - r.Succeeded()
}

func (r *Report) NewArticles() int {
	total := 0
	for _, result := range r.Results {
		total += result.New
	}
	return total
}

func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
