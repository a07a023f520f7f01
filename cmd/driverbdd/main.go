// Command driverbdd runs driver behaviour scenarios.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/driverbdd/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Exit errors have already been printed by the command.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.ExitCode(err))
	}
}
