package commands

import (
	"github.com/lysyi3m/navireader/app/viewer"
)

type ViewCommand struct {
	ID string `short:"i" long:"id" required:"true" description:"Article id"`

	app *App
}

func (c *ViewCommand) Execute(args []string) error {
	if err := c.app.setup(); err != nil {
		return err
	}

	return viewer.Run(c.app.store, c.ID, viewer.Options{NotesDir: c.app.cfg.NotesDir})
}
