package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/navireader/app/store"
)

var _ TaskInterface = (*FetchFeedTask)(nil)

// FetchFeedTask fetches one feed and stores its new articles.
type FetchFeedTask struct {
	Task
	fetcher Fetcher
	store   ArticleStore
	now     func() time.Time

	Result FeedResult
}

func NewFetchFeedTask(feedURL string, fetcher Fetcher, store ArticleStore) *FetchFeedTask {
	return &FetchFeedTask{
		Task:    NewTask(TaskTypeFetchFeed, feedURL),
		fetcher: fetcher,
		store:   store,
		now:     time.Now,
		Result:  FeedResult{URL: feedURL},
	}
}

func (t *FetchFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fetched, err := t.fetcher.Fetch(ctx, t.FeedURL)
	if err != nil {
		return err
	}

	t.Result.Title = fetched.Title
	t.Result.Total = len(fetched.Items) + fetched.Filtered
	t.Result.Filtered = fetched.Filtered

	for _, article := range fetched.Items {
		inserted, err := t.store.InsertIfAbsent(article)
		if err != nil {
			return fmt.Errorf("failed to store article %s: %w", article.ID, err)
		}

		if inserted {
			t.Result.New++
		} else {
			t.Result.Duplicates++
		}
	}

	err = t.store.SaveFeedMeta(store.FeedMeta{
		URL:         t.FeedURL,
		Title:       fetched.Title,
		Description: fetched.Description,
		LastFetched: t.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to store feed metadata: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed", t.FeedURL,
		"duration", t.GetDuration(),
		"total", t.Result.Total,
		"duplicates", t.Result.Duplicates,
		"filtered", t.Result.Filtered,
		"new", t.Result.New)

	return nil
}
