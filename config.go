// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chronos

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the ambient, out-of-core configuration surface spec.md §1
// explicitly excludes from the engine itself: how a host process wires
// up a Dispatcher or Supervisor from a file. It is deliberately thin —
// the engine has no notion of config, only of Jobs built through its
// factories.
type Config struct {
	// TZName, if non-empty, is resolved with time.LoadLocation and used
	// as the engine's timezone. Empty means naive (time.Local semantics).
	TZName string `yaml:"timezone"`
	// MaxExec is the Dispatcher's per-tick execution cap; 0 means
	// unbounded.
	MaxExec int `yaml:"max_exec"`
	// Workers is the Dispatcher's worker-pool size; 0 means one worker
	// per eligible job.
	Workers int `yaml:"workers"`
	// TickInterval is how often a host using chronosctl's demo loop
	// calls Tick.
	TickInterval time.Duration `yaml:"tick_interval"`
	// Priority names one of "linear", "constant", "random"; empty
	// defaults to "linear".
	Priority string `yaml:"priority"`
}

// LoadConfig reads and parses a YAML config file at path. Field values are
// not checked here; an unknown timezone or priority name is reported by
// Location or PriorityFunc.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := &Config{TickInterval: time.Second, Priority: "linear"}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Location resolves TZName into a *time.Location, or nil (naive) when
// TZName is empty.
func (c *Config) Location() (*time.Location, error) {
	if c.TZName == "" {
		return nil, nil
	}
	return time.LoadLocation(c.TZName)
}

// PriorityFunc resolves Priority into one of the package's built-in
// PriorityFunc values.
func (c *Config) PriorityFunc() (PriorityFunc, error) {
	switch c.Priority {
	case "", "linear":
		return LinearPriority, nil
	case "constant":
		return ConstantPriority, nil
	case "random":
		return RandomPriority, nil
	default:
		return nil, fmt.Errorf("unknown priority function %q", c.Priority)
	}
}
