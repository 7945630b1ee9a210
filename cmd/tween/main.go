// Command tween compiles, runs and verifies tween definitions.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/tween/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		// Commands silence cobra's own error printing.
		fmt.Fprintln(os.Stderr, "tween:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
