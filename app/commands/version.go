package commands

import (
	"github.com/lysyi3m/navireader/app/cfg"
)

type VersionCommand struct {
	app *App
}

func (c *VersionCommand) Execute(args []string) error {
	c.app.printer.Print("navireader %s", cfg.GetVersion())
	return nil
}
