// Command gen192 generates the cross-bred C-PAC pipeline configurations.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/gen192/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
