package database

import (
	"github.com/lysyi3m/navireader/app/tasks"
)

type HistoryRepository interface {
	RecordReport(report *tasks.Report) error
	LatestResults() ([]FeedRun, error)
	RecentRuns(limit int) ([]Run, error)
}
