package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/navireader/app/api"
	"github.com/lysyi3m/navireader/app/cfg"
	"github.com/lysyi3m/navireader/app/database"
	"github.com/lysyi3m/navireader/app/tasks"
)

type ServeCommand struct {
	Port     string        `long:"port" env:"NAVIREADER_PORT" default:"8080" description:"HTTP server port"`
	Address  string        `long:"address" env:"NAVIREADER_ADDRESS" default:"127.0.0.1" description:"Address to listen on"`
	APIKey   string        `long:"api-key" env:"NAVIREADER_API_KEY" description:"API access key; the /api endpoints are disabled without it"`
	Interval time.Duration `long:"interval" env:"NAVIREADER_INTERVAL" default:"30m" description:"Time between background refreshes (0 disables)"`

	app *App
}

func (c *ServeCommand) Execute(args []string) error {
	c.app.logLevel = slog.LevelInfo
	if err := c.app.setup(); err != nil {
		return err
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval must be non-negative")
	}

	db, repo := c.app.openHistory()
	var history database.HistoryRepository
	if db != nil {
		defer db.Close()
		history = repo
	}

	scheduler := tasks.NewScheduler(c.app.newOrchestrator(repo), c.app.store, c.Interval)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(c.app.store, history, scheduler, cfg.GetVersion())
	httpServer := &http.Server{
		Addr:         c.Address + ":" + c.Port,
		Handler:      api.NewServer(handler, c.APIKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "address", httpServer.Addr, "api_enabled", c.APIKey != "", "interval", c.Interval)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case serveErr = <-serverErrChan:
	}

	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	return serveErr
}
