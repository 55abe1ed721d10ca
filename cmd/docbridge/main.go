// Command docbridge converts host documents to and from tagged wire form
// and drives a local SQLite document database.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/docbridge/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Command failures were already reported by the output formatter.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
