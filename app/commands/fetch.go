package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/navireader/app/tasks"
)

type FetchCommand struct {
	Update bool `short:"u" long:"update" description:"Rescan notes for feeds before fetching"`

	app *App
}

func (c *FetchCommand) Execute(args []string) error {
	if err := c.app.setup(); err != nil {
		return err
	}

	var urls []string
	var err error
	if c.Update {
		urls, err = c.app.scanFeeds("")
	} else {
		urls, err = c.app.store.LoadFeedList()
	}
	if err != nil {
		return err
	}

	if len(urls) == 0 {
		c.app.printer.Warning("No feeds to fetch. Run 'navireader scan' or 'navireader fetch --update' first.")
		return nil
	}

	db, history := c.app.openHistory()
	if db != nil {
		defer db.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c.app.printer.Info("Fetching %d feeds...", len(urls))

	report, err := c.app.newOrchestrator(history).Run(ctx, urls)
	if err != nil {
		return err
	}

	c.app.printReport(report)

	return nil
}

func (a *App) printReport(report *tasks.Report) {
	for _, result := range report.Results {
		if !result.OK() {
			a.printer.Failure("%s: %v", result.URL, result.Err)
			continue
		}

		line := fmt.Sprintf("%s: %d new, %d already cached", result.URL, result.New, result.Duplicates)
		if result.Filtered > 0 {
			line += fmt.Sprintf(", %d filtered", result.Filtered)
		}
		a.printer.Success("%s", line)
	}

	a.printer.Print("")
	a.printer.Print("Fetched %d/%d feeds, %d new articles in %s",
		report.Succeeded(), len(report.Results), report.NewArticles(), report.Duration().Round(time.Millisecond))
}
