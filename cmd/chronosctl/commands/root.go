package commands

import (
	"github.com/spf13/cobra"
)

// Root is the chronosctl entry point command.
var Root = &cobra.Command{
	Use:   "chronosctl",
	Short: "Demonstration harness for the chronos job scheduler",
}

func init() {
	Root.AddCommand(RunCmd)
	Root.AddCommand(ListCmd)
}
