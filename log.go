// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chronos

import (
	"os"

	"github.com/rs/zerolog"
)

// zlogAdapter implements eventLogger over zerolog, replacing the
// teacher's raw fmt.Fprintf(os.Stderr, ...) panic reporting
// (scheduler.go's default PanicHandler) with structured logging.
type zlogAdapter struct {
	log zerolog.Logger
}

// newDefaultLogger returns the zerolog.Logger used when a Dispatcher or
// Supervisor is not given one explicitly: console-writer output to
// stderr with a timestamp, mirroring the teacher's stderr default.
func newDefaultLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func newEventLogger(log zerolog.Logger) eventLogger {
	return &zlogAdapter{log: log}
}

// logPanic reads j.id/j.kind/alias directly instead of through j's
// locking accessors: all three are fixed at construction and never
// mutated afterward, so no lock is needed here.
func (a *zlogAdapter) logPanic(j *Job, r interface{}) {
	a.log.Error().
		Str("job", j.id.String()).
		Str("handle", j.handleNameLocked()).
		Str("kind", j.kind.String()).
		Interface("panic", r).
		Msg("unhandled exception in job")
}
