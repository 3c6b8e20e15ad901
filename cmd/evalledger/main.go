// Command evalledger inspects and journals evaluation ledgers.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/evalledger/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
