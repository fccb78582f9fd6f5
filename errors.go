// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chronos

import "fmt"

// ErrKind identifies one of the error conditions a Dispatcher, Supervisor
// or Job constructor can raise. The constants below are the full taxonomy.
type ErrKind int

const (
	// ErrBadTiming means the timing shape does not match the requested JobKind.
	ErrBadTiming ErrKind = iota
	// ErrTimezoneMismatch means a naive and an aware instant/time were mixed
	// with the engine's timezone.
	ErrTimezoneMismatch
	// ErrStartStop means start >= stop.
	ErrStartStop
	// ErrDuplicateTiming means two effectively-identical entries were given
	// in a list timing.
	ErrDuplicateTiming
	// ErrWeekdayRange means a Weekday value fell outside [0, 6].
	ErrWeekdayRange
	// ErrNotScheduled means a Job was deleted that is not in the registry.
	ErrNotScheduled
	// ErrBadTzname means a tz implementation returned a non-string name.
	ErrBadTzname
)

func (k ErrKind) String() string {
	switch k {
	case ErrBadTiming:
		return "bad timing"
	case ErrTimezoneMismatch:
		return "timezone mismatch"
	case ErrStartStop:
		return "start must be before stop"
	case ErrDuplicateTiming:
		return "duplicate effective timing"
	case ErrWeekdayRange:
		return "weekday out of range"
	case ErrNotScheduled:
		return "job not scheduled"
	case ErrBadTzname:
		return "tzinfo.Name() returned a non-string"
	default:
		return "unknown scheduler error"
	}
}

// SchedulerError is the single error type returned by this package. All
// validation and lifecycle errors carry a Kind so callers can use
// errors.As to branch on the condition rather than matching message text.
type SchedulerError struct {
	Kind ErrKind
	msg  string
}

func newErr(kind ErrKind, msg string) *SchedulerError {
	return &SchedulerError{Kind: kind, msg: msg}
}

func (e *SchedulerError) Error() string {
	if e.msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind.String(), e.msg)
}

// Is reports whether target is a *SchedulerError with the same Kind, so
// errors.Is(err, &SchedulerError{Kind: ErrNotScheduled}) works in addition
// to errors.As(err, &schedulerError). A bare ErrKind is not an error and
// cannot be passed as the target.
func (e *SchedulerError) Is(target error) bool {
	other, ok := target.(*SchedulerError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}
