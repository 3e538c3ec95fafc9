package commands

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"

	"github.com/lysyi3m/navireader/app/cfg"
	"github.com/lysyi3m/navireader/app/scanner"
)

type ScanCommand struct {
	Path string `short:"p" long:"path" description:"Directory of markdown notes to scan (default: scan_path from config)"`

	app *App
}

func (c *ScanCommand) Execute(args []string) error {
	if err := c.app.setup(); err != nil {
		return err
	}

	urls, err := c.app.scanFeeds(c.Path)
	if err != nil {
		return err
	}

	c.app.printer.Print("Found %d RSS feeds:", len(urls))
	for _, url := range urls {
		c.app.printer.Print("  - %s", url)
	}

	return nil
}

// scanFeeds scans path, or the configured scan path, and replaces the saved
// feed list with what it found.
func (a *App) scanFeeds(path string) ([]string, error) {
	home, _ := os.UserHomeDir()
	root := cmp.Or(cfg.ExpandHome(path, home), a.cfg.ScanPath)

	sources, err := scanner.Scan(root)
	if err != nil {
		return nil, err
	}

	for _, source := range sources {
		slog.Debug("Feed discovered", "feed", source.URL, "file", source.File, "line", source.Line)
	}

	urls := scanner.URLs(sources)
	if err := a.store.SaveFeedList(urls); err != nil {
		return nil, fmt.Errorf("failed to save feed list: %w", err)
	}

	return urls, nil
}
