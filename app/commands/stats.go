package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

const recentRunsShown = 5

type StatsCommand struct {
	app *App
}

func (c *StatsCommand) Execute(args []string) error {
	if err := c.app.setup(); err != nil {
		return err
	}

	stats, err := c.app.store.Stats()
	if err != nil {
		return err
	}

	p := c.app.printer
	p.Print("Data directory: %s", c.app.cfg.DataDir)
	p.Print("Articles:       %s", humanize.Comma(int64(stats.Articles)))
	p.Print("Unread:         %s", humanize.Comma(int64(stats.Unread)))
	p.Print("Starred:        %s", humanize.Comma(int64(stats.Starred)))
	p.Print("Feeds:          %s", humanize.Comma(int64(stats.Feeds)))

	db, history := c.app.openHistory()
	if db == nil {
		return nil
	}
	defer db.Close()

	runs, err := history.RecentRuns(recentRunsShown)
	if err != nil {
		return fmt.Errorf("failed to load fetch history: %w", err)
	}
	if len(runs) == 0 {
		return nil
	}

	p.Print("")
	p.Print("Recent fetch runs:")

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			humanize.Time(run.StartedAt),
			fmt.Sprintf("%d/%d", run.Succeeded, run.Feeds),
			strconv.Itoa(run.NewArticles),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String(),
		})
	}

	return p.Table([]string{"Started", "Feeds OK", "New", "Duration"}, rows)
}
