// Command chronosctl is a small demonstration harness for the chronos
// scheduler: it loads a YAML config, arms a handful of sample jobs on a
// Dispatcher, and drives it with a host-side tick loop so the library's
// behavior can be observed from a terminal.
package main

import (
	"fmt"
	"os"

	"github.com/corvidlabs/chronos/cmd/chronosctl/commands"
)

func main() {
	if err := commands.Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
