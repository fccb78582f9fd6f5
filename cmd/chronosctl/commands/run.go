package commands

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/corvidlabs/chronos"
)

// RunCmd arms a small set of demo jobs on a Dispatcher and ticks it on
// a wall-clock interval, printing a pterm section heading and the
// Dispatcher's plain String() table after every tick.
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a demo Dispatcher against a config file",
	RunE:  runDispatcherDemo,
}

var (
	configPath string
	tickCount  int
)

func init() {
	RunCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a chronosctl YAML config (optional)")
	RunCmd.Flags().IntVarP(&tickCount, "ticks", "n", 5, "number of ticks to run before exiting")
}

func runDispatcherDemo(cmd *cobra.Command, args []string) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: cmd.OutOrStdout()}).With().Timestamp().Logger()

	cfg := &chronos.Config{TickInterval: time.Second, Priority: "linear"}
	if configPath != "" {
		loaded, err := chronos.LoadConfig(configPath)
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
		chronos.WithDispatcherLogger(log),
	)

	if _, err := d.Interval(2*time.Second, func(args ...interface{}) {
		pterm.Info.Println("heartbeat tick")
	}, chronos.WithAlias("heartbeat")); err != nil {
		return err
	}
	digestAt := time.Now()
	if loc != nil {
		digestAt = digestAt.In(loc)
	}
	if _, err := d.Daily(digestAt, func(args ...interface{}) {
		pterm.Success.Println("daily digest fired")
	}, chronos.WithAlias("daily-digest")); err != nil {
		return err
	}

	interval := cfg.TickInterval
	if interval <= 0 {
		interval = time.Second
	}

	for i := 0; i < tickCount; i++ {
		n := d.Tick(false)
		pterm.DefaultSection.Printf("tick %d — %d job(s) executed", i+1, n)
		fmt.Print(d.String())
		time.Sleep(interval)
	}
	return nil
}
