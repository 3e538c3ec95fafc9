package commands

import (
	"errors"
	"fmt"

	"github.com/lysyi3m/navireader/app/store"
)

type stateAction int

const (
	actionRead stateAction = iota
	actionUnread
	actionStar
)

// StateCommand backs read, unread and star.
type StateCommand struct {
	Args struct {
		ID string `positional-arg-name:"id" required:"yes"`
	} `positional-args:"yes"`

	app    *App
	action stateAction
}

func (c *StateCommand) Execute(args []string) error {
	if err := c.app.setup(); err != nil {
		return err
	}

	id := c.Args.ID

	var err error
	switch c.action {
	case actionRead:
		if err = c.app.store.MarkRead(id); err == nil {
			c.app.printer.Success("Marked %s as read", id)
		}
	case actionUnread:
		if err = c.app.store.MarkUnread(id); err == nil {
			c.app.printer.Success("Marked %s as unread", id)
		}
	case actionStar:
		var starred bool
		if starred, err = c.app.store.ToggleStar(id); err == nil {
			if starred {
				c.app.printer.Success("Starred %s", id)
			} else {
				c.app.printer.Success("Unstarred %s", id)
			}
		}
	}

	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no article with id %s", id)
	}
	return err
}
