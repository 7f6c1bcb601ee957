// Command motion compiles, validates, and runs declarative interaction
// documents.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/motion/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "motion:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
