package database

import (
	"fmt"
	"time"

	"github.com/lysyi3m/navireader/app/tasks"
)

var (
	_ HistoryRepository     = (*RunRepository)(nil)
	_ tasks.HistoryRecorder = (*RunRepository)(nil)
)

// RunRepository handles database operations for fetch history
type RunRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// RecordReport stores a finished run and one row per feed in a single transaction.
func (r *RunRepository) RecordReport(report *tasks.Report) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO fetch_runs (id, started_at, finished_at, feeds, succeeded, failed, new_articles)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, report.ID, report.StartedAt.UnixMilli(), report.FinishedAt.UnixMilli(),
		len(report.Results), report.Succeeded(), report.Failed(), report.NewArticles())
	if err != nil {
		return fmt.Errorf("failed to insert fetch run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO fetch_results (run_id, feed_url, title, total, new_articles, duplicates, filtered, duration_ms, error, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare fetch result insert: %w", err)
	}
	defer stmt.Close()

	for _, result := range report.Results {
		errText := ""
		if result.Err != nil {
			errText = result.Err.Error()
		}

		_, err = stmt.Exec(report.ID, result.URL, result.Title, result.Total, result.New,
			result.Duplicates, result.Filtered, result.Duration.Milliseconds(), errText,
			report.FinishedAt.UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to insert fetch result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit fetch run: %w", err)
	}

	return nil
}

// LatestResults returns the most recent result of every feed ever fetched, ordered by URL.
func (r *RunRepository) LatestResults() ([]FeedRun, error) {
	rows, err := r.db.Query(`
		SELECT run_id, feed_url, title, total, new_articles, duplicates, filtered, duration_ms, error, fetched_at
		FROM (
			SELECT *, ROW_NUMBER() OVER (PARTITION BY feed_url ORDER BY fetched_at DESC, id DESC) AS rn
			FROM fetch_results
		)
		WHERE rn = 1
		ORDER BY feed_url
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest results: %w", err)
	}
	defer rows.Close()

	var results []FeedRun
	for rows.Next() {
		var result FeedRun
		var durationMs, fetchedAt int64

		err := rows.Scan(&result.RunID, &result.FeedURL, &result.Title, &result.Total, &result.New,
			&result.Duplicates, &result.Filtered, &durationMs, &result.Error, &fetchedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fetch result: %w", err)
		}

		result.Duration = time.Duration(durationMs) * time.Millisecond
		result.FetchedAt = time.UnixMilli(fetchedAt).UTC()
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fetch results: %w", err)
	}

	return results, nil
}

// RecentRuns returns up to limit runs, newest first.
func (r *RunRepository) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(`
		SELECT id, started_at, finished_at, feeds, succeeded, failed, new_articles
		FROM fetch_runs
		ORDER BY started_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt, finishedAt int64

		err := rows.Scan(&run.ID, &startedAt, &finishedAt, &run.Feeds, &run.Succeeded, &run.Failed, &run.NewArticles)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fetch run: %w", err)
		}

		run.StartedAt = time.UnixMilli(startedAt).UTC()
		run.FinishedAt = time.UnixMilli(finishedAt).UTC()
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fetch runs: %w", err)
	}

	return runs, nil
}
