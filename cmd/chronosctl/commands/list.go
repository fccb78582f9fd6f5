package commands

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/corvidlabs/chronos"
)

// ListCmd arms the same demo job set as RunCmd but, instead of ticking,
// prints a pterm section heading and the Dispatcher's plain String()
// table once and exits. The config file only sets engine options
// (timezone, max_exec, workers, priority); the demo jobs are fixed.
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the demo job registry without ticking",
	RunE:  listDemoJobs,
}

var listConfigPath string

func init() {
	ListCmd.Flags().StringVarP(&listConfigPath, "config", "c", "", "path to a chronosctl YAML config (optional)")
}

func listDemoJobs(cmd *cobra.Command, args []string) error {
	cfg := &chronos.Config{TickInterval: time.Second, Priority: "linear"}
	if listConfigPath != "" {
		loaded, err := chronos.LoadConfig(listConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("resolving timezone: %w", err)
	}
	priorityFn, err := cfg.PriorityFunc()
	if err != nil {
		return err
	}

	d := chronos.NewDispatcher(
		chronos.WithDispatcherTZ(loc),
		chronos.WithMaxExec(cfg.MaxExec),
		chronos.WithWorkers(cfg.Workers),
		chronos.WithPriorityFunc(priorityFn),
	)

	if _, err := d.Interval(2*time.Second, func(args ...interface{}) {}, chronos.WithAlias("heartbeat")); err != nil {
		return err
	}
	digestAt := time.Now()
	if loc != nil {
		digestAt = digestAt.In(loc)
	}
	if _, err := d.Daily(digestAt, func(args ...interface{}) {}, chronos.WithAlias("daily-digest")); err != nil {
		return err
	}

	pterm.DefaultSection.Println("registered jobs")
	fmt.Print(d.String())
	return nil
}
