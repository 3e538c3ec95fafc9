// Package commands implements the navireader subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"

	"github.com/lysyi3m/navireader/app/cfg"
	"github.com/lysyi3m/navireader/app/database"
	"github.com/lysyi3m/navireader/app/feed"
	"github.com/lysyi3m/navireader/app/store"
	"github.com/lysyi3m/navireader/app/tasks"
)

const historyFileName = "history.db"

// App carries what every command shares: the global options and the
// resources opened from them.
type App struct {
	Options cfg.Options

	cfg     *cfg.Cfg
	store   *store.Store
	printer *Printer

	// Interactive commands only log warnings unless --debug is given.
	logLevel slog.Level
}

func NewApp() *App {
	return &App{printer: NewPrinter(), logLevel: slog.LevelWarn}
}

// NewParser builds the command line parser with every subcommand registered.
func NewParser(app *App) *flags.Parser {
	parser := flags.NewParser(&app.Options, flags.Default)
	parser.ShortDescription = "RSS reader integrated with your Zettelkasten"

	commands := []struct {
		name  string
		short string
		long  string
		data  any
	}{
		{"scan", "Discover feeds in notes", "Scan markdown notes for #feed tags and save the feed list", &ScanCommand{app: app}},
		{"fetch", "Fetch all feeds", "Fetch every feed in the saved list and cache new articles", &FetchCommand{app: app}},
		{"view", "Read an article", "Open a cached article in the terminal viewer", &ViewCommand{app: app}},
		{"list", "List articles", "List cached articles, most recently fetched first", &ListCommand{app: app}},
		{"search", "Search articles", "Search cached articles, ignoring case", &SearchCommand{app: app}},
		{"read", "Mark an article read", "Mark an article as read", &StateCommand{app: app, action: actionRead}},
		{"unread", "Mark an article unread", "Mark an article as unread", &StateCommand{app: app, action: actionUnread}},
		{"star", "Toggle the star on an article", "Star or unstar an article", &StateCommand{app: app, action: actionStar}},
		{"feeds", "List feeds", "List saved feeds with their last fetch status", &FeedsCommand{app: app}},
		{"stats", "Show cache statistics", "Show article counts and recent fetch runs", &StatsCommand{app: app}},
		{"serve", "Run the HTTP server", "Serve the local HTTP API and refresh feeds in the background", &ServeCommand{app: app}},
		{"version", "Show version", "Show the navireader version", &VersionCommand{app: app}},
	}

	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			panic(fmt.Sprintf("failed to register command %s: %v", c.name, err))
		}
	}

	return parser
}

// setup loads the configuration and opens the store. Commands call it first.
func (a *App) setup() error {
	if a.store != nil {
		return nil
	}

	config, err := cfg.Load(&a.Options)
	if err != nil {
		return err
	}
	a.cfg = config

	level := a.logLevel
	if config.Debug {
		level = slog.LevelDebug
	}
	setupLogging(level)

	st, err := store.Open(config.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	a.store = st

	slog.Debug("Configuration loaded", "data_dir", config.DataDir, "config", config.ConfigFile, "scan_path", config.ScanPath)

	return nil
}

func setupLogging(level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// openHistory opens the fetch history database. History is optional: when it
// cannot be opened the error is logged and nil is returned.
func (a *App) openHistory() (*database.DB, *database.RunRepository) {
	path := filepath.Join(a.store.StateDir(), historyFileName)

	db, err := database.Open(path)
	if err != nil {
		slog.Warn("Fetch history unavailable", "path", path, "error", err)
		return nil, nil
	}

	return db, database.NewRunRepository(db)
}

func (a *App) newClient() *feed.Client {
	return feed.NewClient(&http.Client{}, feed.ClientOptions{
		UserAgent:      a.cfg.UserAgent,
		Timeout:        a.cfg.Timeout,
		HostDelay:      a.cfg.HostDelay,
		ExtractContent: a.cfg.ExtractContent,
		Filters:        a.cfg.Filters,
	})
}

func (a *App) newOrchestrator(history *database.RunRepository) *tasks.Orchestrator {
	orchestrator := tasks.NewOrchestrator(a.newClient(), a.store, a.cfg.Concurrency)
	if history != nil {
		orchestrator.SetHistory(history)
	}
	return orchestrator
}
