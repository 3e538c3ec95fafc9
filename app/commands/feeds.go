package commands

import (
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/lysyi3m/navireader/app/database"
)

type FeedsCommand struct {
	app *App
}

func (c *FeedsCommand) Execute(args []string) error {
	if err := c.app.setup(); err != nil {
		return err
	}

	urls, err := c.app.store.LoadFeedList()
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		c.app.printer.Print("No feeds saved. Run 'navireader scan' first.")
		return nil
	}

	latest := make(map[string]database.FeedRun)
	db, history := c.app.openHistory()
	if db != nil {
		defer db.Close()

		runs, err := history.LatestResults()
		if err != nil {
			slog.Warn("Failed to load fetch history", "error", err)
		}
		for _, run := range runs {
			latest[run.FeedURL] = run
		}
	}

	rows := make([][]string, 0, len(urls))
	for _, url := range urls {
		title := "-"
		fetched := "never"

		meta, err := c.app.store.GetFeedMeta(url)
		if err != nil {
			slog.Warn("Failed to read feed metadata", "feed", url, "error", err)
		}
		if meta != nil {
			title = truncate(meta.Title, maxTitleWidth)
			fetched = humanize.Time(meta.LastFetched)
		}

		status := "-"
		if run, ok := latest[url]; ok {
			if run.OK() {
				status = "ok"
			} else {
				status = "error: " + truncate(run.Error, maxTitleWidth)
			}
		}

		rows = append(rows, []string{url, title, fetched, status})
	}

	return c.app.printer.Table([]string{"URL", "Title", "Fetched", "Status"}, rows)
}
