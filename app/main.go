package main

import (
	"errors"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/lysyi3m/navireader/app/commands"
)

func main() {
	parser := commands.NewParser(commands.NewApp())

	// The parser prints both parse and command errors.
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
}
